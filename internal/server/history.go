package server

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	scandomain "github.com/stylorenlabs/styloren/internal/scanhistory/domain"
)

func (s *Server) ListHistory(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		s.AbortWithError(c, errBadJSON)
		return
	}

	result, err := s.scanSvc.List(c.Request.Context(), currentUserID(c), page)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, result)
}

func (s *Server) DeleteHistoryItem(c *gin.Context) {
	scanID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		s.AbortWithError(c, scandomain.ErrScanNotFound)
		return
	}

	if err := s.scanSvc.Delete(c.Request.Context(), currentUserID(c), scanID); err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"deleted": true})
}

func (s *Server) ClearHistory(c *gin.Context) {
	if err := s.scanSvc.DeleteAll(c.Request.Context(), currentUserID(c)); err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"deleted": true})
}
