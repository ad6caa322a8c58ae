package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeleteAccount removes everything the user owns: scans and stored images,
// credit batches, the profile row, and finally the account itself. Ordering
// matters: the user row goes last so a partial failure leaves a login that
// can retry, never an orphaned account.
func (s *Server) DeleteAccount(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	if err := s.scanSvc.DeleteAll(ctx, userID); err != nil {
		s.AbortWithError(c, err)
		return
	}
	if err := s.creditSvc.PurgeUser(ctx, userID); err != nil {
		s.AbortWithError(c, err)
		return
	}
	if err := s.profileRepo.DeleteByUser(ctx, s.db, userID); err != nil {
		s.AbortWithError(c, err)
		return
	}
	if err := s.authSvc.DeleteAccount(ctx, userID); err != nil {
		s.AbortWithError(c, err)
		return
	}

	s.log.Info("account deleted via api", zap.String("user_id", userID.String()))
	respondData(c, gin.H{"deleted": true})
}
