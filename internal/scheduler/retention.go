package scheduler

import (
	"context"

	"go.uber.org/zap"
)

// PurgeExpiredResetCodes removes reset codes that are past their expiry or
// already consumed.
func (s *Scheduler) PurgeExpiredResetCodes(ctx context.Context) error {
	now := s.clock.Now(ctx)

	deleted, err := s.authRepo.DeleteExpiredResetCodes(ctx, s.db, now)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.log.Info("expired reset codes purged", zap.Int64("deleted", deleted))
	}
	return nil
}

// PurgeOptedOutScanHistory clears stored scans for users who have turned
// history saving off since their scans were recorded.
func (s *Scheduler) PurgeOptedOutScanHistory(ctx context.Context) error {
	userIDs, err := s.scanRepo.UsersWithHistoryOff(ctx, s.db)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		if err := s.scans.DeleteAll(ctx, userID); err != nil {
			s.log.Error("scan purge failed for user",
				zap.String("user_id", userID.String()), zap.Error(err))
			continue
		}
	}

	if len(userIDs) > 0 {
		s.log.Info("opted-out scan history purged", zap.Int("users", len(userIDs)))
	}
	return nil
}
