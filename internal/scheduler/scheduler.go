// Package scheduler runs periodic maintenance jobs: purging expired
// password reset codes and clearing scan history for opted-out users.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/stylorenlabs/styloren/internal/auth/domain"
	"github.com/stylorenlabs/styloren/internal/clock"
	scandomain "github.com/stylorenlabs/styloren/internal/scanhistory/domain"
)

const tickInterval = 15 * time.Minute

type SchedulerParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	AuthRepo authdomain.Repository
	Scans    scandomain.Service
	ScanRepo scandomain.Repository
}

type Scheduler struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	authRepo authdomain.Repository
	scans    scandomain.Service
	scanRepo scandomain.Repository
}

func New(p SchedulerParam) *Scheduler {
	return &Scheduler{
		db:       p.DB,
		log:      p.Log.Named("scheduler"),
		clock:    p.Clock,
		authRepo: p.AuthRepo,
		scans:    p.Scans,
		scanRepo: p.ScanRepo,
	}
}

// RunForever ticks until the context is cancelled. Jobs are best-effort; a
// failed job is retried on the next tick.
func (s *Scheduler) RunForever(ctx context.Context) {
	s.log.Info("scheduler started", zap.Duration("interval", tickInterval))

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if err := s.PurgeExpiredResetCodes(ctx); err != nil {
		s.log.Error("reset code purge failed", zap.Error(err))
	}
	if err := s.PurgeOptedOutScanHistory(ctx); err != nil {
		s.log.Error("scan history purge failed", zap.Error(err))
	}
}
