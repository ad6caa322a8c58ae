package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, batch *Batch) error

	// ListByUser returns all of the user's batches ordered by expires_at
	// ascending, the consumption order.
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Batch, error)

	// IncrementUsed applies a conditional single-row increment: it succeeds
	// only when the batch's credits_used still equals lastKnownUsed, so a
	// concurrent increment surfaces as ok=false instead of a lost update.
	IncrementUsed(ctx context.Context, db *gorm.DB, batchID snowflake.ID, lastKnownUsed int, now time.Time) (bool, error)

	// DeleteByUser removes all of the user's batches. Account deletion only;
	// batches are never deleted by the normal credit flow.
	DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
}
