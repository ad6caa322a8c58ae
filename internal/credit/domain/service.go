package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	// ErrNoCredits means no eligible batch exists. Recoverable by purchase,
	// never fatal; callers show the paywall.
	ErrNoCredits = errors.New("no_credits")
	// ErrPlanNotFound means the requested plan is not in the catalog.
	ErrPlanNotFound = errors.New("plan_not_found")
	// ErrConflict marks a concurrent-update conflict on a batch increment.
	// Retried once internally; surfaced wrapped in ErrPersistence when the
	// retry also fails.
	ErrConflict = errors.New("concurrent_update_conflict")
	// ErrPersistence tags storage failures so callers can distinguish them
	// from business-rule denials.
	ErrPersistence = errors.New("persistence_error")
)

type Service interface {
	// GetState aggregates the user's batches and profile preferences as of
	// now. Read-only; batch expiry is evaluated at call time, never cached
	// in storage.
	GetState(ctx context.Context, userID snowflake.ID) (*State, error)

	// Consume debits exactly one credit from the soonest-expiring active
	// batch. Fails with ErrNoCredits when no batch is eligible; on storage
	// failure nothing is debited and the cached state is left untouched.
	Consume(ctx context.Context, userID snowflake.ID) error

	// AddBatch records a settled purchase of the given plan as one new
	// batch. Stacking: existing batches are never merged or replaced.
	AddBatch(ctx context.Context, userID snowflake.ID, planID string) (*BatchView, error)

	// SetSaveScanHistory updates the profile preference shared with
	// GetState.
	SetSaveScanHistory(ctx context.Context, userID snowflake.ID, enabled bool) error

	// Invalidate drops the user's cached state, forcing the next read to
	// hit storage.
	Invalidate(userID snowflake.ID)

	// PurgeUser removes every batch the user owns. Account deletion only.
	PurgeUser(ctx context.Context, userID snowflake.ID) error
}
