package server

import (
	"github.com/gin-gonic/gin"

	creditdomain "github.com/stylorenlabs/styloren/internal/credit/domain"
)

type purchaseRequest struct {
	PlanID string `json:"plan_id"`
}

func (s *Server) GetCredits(c *gin.Context) {
	state, err := s.creditSvc.GetState(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	respondData(c, gin.H{
		"credits":     state,
		"expiry_info": state.ExpiryInfo(s.clock.Now(c.Request.Context())),
	})
}

func (s *Server) ListPlans(c *gin.Context) {
	respondData(c, creditdomain.Plans())
}

// PurchaseCredits records an already-settled purchase as a new batch.
func (s *Server) PurchaseCredits(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, errBadJSON)
		return
	}

	batch, err := s.creditSvc.AddBatch(c.Request.Context(), currentUserID(c), req.PlanID)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, batch)
}
