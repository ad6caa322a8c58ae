package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stylorenlabs/styloren/internal/cache"
	"github.com/stylorenlabs/styloren/internal/clock"
	"github.com/stylorenlabs/styloren/internal/config"
	creditdomain "github.com/stylorenlabs/styloren/internal/credit/domain"
	profiledomain "github.com/stylorenlabs/styloren/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Node        *snowflake.Node
	Config      *config.Config
	Repo        creditdomain.Repository
	ProfileRepo profiledomain.Repository
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	node        *snowflake.Node
	repo        creditdomain.Repository
	profileRepo profiledomain.Repository

	states   cache.Cache[snowflake.ID, *creditdomain.State]
	cacheTTL time.Duration
}

func NewService(p ServiceParam) creditdomain.Service {
	ttl := p.Config.Credits.CacheTTL
	var states cache.Cache[snowflake.ID, *creditdomain.State] = cache.NewTTLCache[snowflake.ID, *creditdomain.State]()
	if ttl <= 0 {
		states = cache.Noop[snowflake.ID, *creditdomain.State]{}
	}
	return &service{
		db:          p.DB,
		log:         p.Log.Named("credit.service"),
		clock:       p.Clock,
		node:        p.Node,
		repo:        p.Repo,
		profileRepo: p.ProfileRepo,
		states:      states,
		cacheTTL:    ttl,
	}
}

func (s *service) GetState(ctx context.Context, userID snowflake.ID) (*creditdomain.State, error) {
	if state, ok := s.states.Get(userID); ok {
		return state, nil
	}
	return s.fetchState(ctx, userID)
}

// fetchState reads batches and profile from storage, aggregates them as of
// now, and replaces the cache entry.
func (s *service) fetchState(ctx context.Context, userID snowflake.ID) (*creditdomain.State, error) {
	batches, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, persistence("list batches", err)
	}

	prof, err := s.profileRepo.Get(ctx, s.db, userID)
	if err != nil {
		return nil, persistence("load profile", err)
	}

	var displayName *string
	saveHistory := true
	if prof != nil {
		displayName = prof.DisplayName
		saveHistory = prof.SaveScanHistory
	}

	state := creditdomain.NewState(batches, displayName, saveHistory, s.clock.Now(ctx))
	s.states.Set(userID, state, s.cacheTTL)
	return state, nil
}

func (s *service) Consume(ctx context.Context, userID snowflake.ID) error {
	state, err := s.GetState(ctx, userID)
	if err != nil {
		return err
	}

	now := s.clock.Now(ctx)
	target := pickBatch(state, now)
	if target == nil {
		// Defensive recheck: the cached state may be stale, so confirm
		// against storage before denying.
		if state, err = s.fetchState(ctx, userID); err != nil {
			return err
		}
		if target = pickBatch(state, now); target == nil {
			gateDenialsTotal.Inc()
			return creditdomain.ErrNoCredits
		}
	}

	ok, err := s.repo.IncrementUsed(ctx, s.db, target.ID, target.CreditsUsed, now)
	if err != nil {
		return persistence("increment batch", err)
	}
	if !ok {
		conflictsTotal.Inc()
		return s.retryConsume(ctx, userID, now)
	}

	s.applyConsumed(userID, state, target.ID)
	consumedTotal.Inc()
	return nil
}

// retryConsume re-reads state from storage and attempts the increment once
// more. A second conflict is surfaced as a persistence failure; the caller
// retries the whole action.
func (s *service) retryConsume(ctx context.Context, userID snowflake.ID, now time.Time) error {
	state, err := s.fetchState(ctx, userID)
	if err != nil {
		return err
	}

	target := pickBatch(state, now)
	if target == nil {
		gateDenialsTotal.Inc()
		return creditdomain.ErrNoCredits
	}

	ok, err := s.repo.IncrementUsed(ctx, s.db, target.ID, target.CreditsUsed, now)
	if err != nil {
		return persistence("increment batch", err)
	}
	if !ok {
		conflictsTotal.Inc()
		s.log.Warn("credit increment conflicted twice",
			zap.String("user_id", userID.String()),
			zap.String("batch_id", target.ID.String()),
		)
		return persistence("increment batch", creditdomain.ErrConflict)
	}

	s.applyConsumed(userID, state, target.ID)
	consumedTotal.Inc()
	return nil
}

// pickBatch selects the soonest-expiring batch that is still eligible at
// now. Batches are already ordered by expires_at ascending, so the first
// eligible one wins (FIFO by expiry).
func pickBatch(state *creditdomain.State, now time.Time) *creditdomain.BatchView {
	for i := range state.Batches {
		b := &state.Batches[i]
		if now.After(b.ExpiresAt) {
			continue
		}
		if b.CreditsTotal-b.CreditsUsed > 0 {
			return b
		}
	}
	return nil
}

// applyConsumed patches the cached state after a confirmed write. The cache
// is only ever updated with deltas the database has accepted.
func (s *service) applyConsumed(userID snowflake.ID, state *creditdomain.State, batchID snowflake.ID) {
	s.states.Set(userID, state.WithConsumed(batchID), s.cacheTTL)
}

func (s *service) AddBatch(ctx context.Context, userID snowflake.ID, planID string) (*creditdomain.BatchView, error) {
	plan, ok := creditdomain.PlanByID(planID)
	if !ok {
		return nil, creditdomain.ErrPlanNotFound
	}

	now := s.clock.Now(ctx)
	batch := &creditdomain.Batch{
		ID:           s.node.Generate(),
		UserID:       userID,
		CreditsTotal: plan.Credits,
		CreditsUsed:  0,
		PlanName:     plan.Name,
		PurchasedAt:  now,
		ExpiresAt:    now.Add(time.Duration(plan.ValidityDays) * 24 * time.Hour),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Single insert; a failed write creates nothing.
	if err := s.repo.Insert(ctx, s.db, batch); err != nil {
		return nil, persistence("insert batch", err)
	}

	s.states.Delete(userID)
	if _, err := s.fetchState(ctx, userID); err != nil {
		// The purchase is durable; a failed re-read only delays the cache.
		s.log.Warn("state refresh after purchase failed", zap.Error(err))
	}

	purchasesTotal.WithLabelValues(plan.ID).Inc()
	s.log.Info("credit batch added",
		zap.String("user_id", userID.String()),
		zap.String("plan", plan.ID),
		zap.Int("credits", plan.Credits),
		zap.Time("expires_at", batch.ExpiresAt),
	)

	view := &creditdomain.BatchView{
		ID:               batch.ID,
		CreditsTotal:     batch.CreditsTotal,
		CreditsUsed:      0,
		CreditsRemaining: batch.CreditsTotal,
		PlanName:         batch.PlanName,
		PurchasedAt:      batch.PurchasedAt,
		ExpiresAt:        batch.ExpiresAt,
	}
	return view, nil
}

func (s *service) SetSaveScanHistory(ctx context.Context, userID snowflake.ID, enabled bool) error {
	now := s.clock.Now(ctx)
	if err := s.profileRepo.SetSaveScanHistory(ctx, s.db, userID, enabled, now); err != nil {
		return persistence("update save_scan_history", err)
	}
	if state, ok := s.states.Get(userID); ok {
		s.states.Set(userID, state.WithSaveScanHistory(enabled), s.cacheTTL)
	}
	return nil
}

func (s *service) Invalidate(userID snowflake.ID) {
	s.states.Delete(userID)
}

func (s *service) PurgeUser(ctx context.Context, userID snowflake.ID) error {
	n, err := s.repo.DeleteByUser(ctx, s.db, userID)
	if err != nil {
		return persistence("delete batches", err)
	}
	s.states.Delete(userID)
	s.log.Info("credit batches purged",
		zap.String("user_id", userID.String()),
		zap.Int64("batches", n),
	)
	return nil
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(creditdomain.ErrPersistence, err))
}
