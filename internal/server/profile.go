package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

type profileResponse struct {
	DisplayName     *string `json:"display_name"`
	SaveScanHistory bool    `json:"save_scan_history"`
}

type updateProfileRequest struct {
	DisplayName     *string `json:"display_name,omitempty"`
	SaveScanHistory *bool   `json:"save_scan_history,omitempty"`
}

func (s *Server) GetProfile(c *gin.Context) {
	prof, err := s.profileRepo.Get(c.Request.Context(), s.db, currentUserID(c))
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	resp := profileResponse{SaveScanHistory: true}
	if prof != nil {
		resp.DisplayName = prof.DisplayName
		resp.SaveScanHistory = prof.SaveScanHistory
	}
	respondData(c, resp)
}

func (s *Server) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, errBadJSON)
		return
	}

	now := s.clock.Now(ctx)
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		var value *string
		if name != "" {
			value = &name
		}
		if err := s.profileRepo.SetDisplayName(ctx, s.db, userID, value, now); err != nil {
			s.AbortWithError(c, err)
			return
		}
		// The cached credit state carries the display name.
		s.creditSvc.Invalidate(userID)
	}
	if req.SaveScanHistory != nil {
		// Routed through the credit service so its cached state stays
		// consistent with the stored preference.
		if err := s.creditSvc.SetSaveScanHistory(ctx, userID, *req.SaveScanHistory); err != nil {
			s.AbortWithError(c, err)
			return
		}
	}

	s.GetProfile(c)
}
