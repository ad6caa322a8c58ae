package clock

import (
	"context"
	"time"
)

// Clock abstracts "now" so time-driven state (batch expiry) stays testable.
type Clock interface {
	Now(ctx context.Context) time.Time
}
