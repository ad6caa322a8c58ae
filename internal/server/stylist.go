package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	creditdomain "github.com/stylorenlabs/styloren/internal/credit/domain"
	scandomain "github.com/stylorenlabs/styloren/internal/scanhistory/domain"
	stylistdomain "github.com/stylorenlabs/styloren/internal/stylist/domain"
)

type analyzeRequest struct {
	ImageBase64 string `json:"image_base64"`
	UserName    string `json:"user_name"`
}

type chatRequest struct {
	Message     string                      `json:"message"`
	ImageBase64 string                      `json:"image_base64"`
	History     []stylistdomain.ChatMessage `json:"conversation_history"`
	UserName    string                      `json:"user_name"`
}

type compareRequest struct {
	Images   []string `json:"images"`
	Occasion string   `json:"occasion"`
}

// AnalyzeOutfit is the core scan flow: credit gate, upload rate limit, AI
// analysis, then the debit. The credit is only consumed after the AI call
// succeeds, and the scan is recorded afterward if the user keeps history.
func (s *Server) AnalyzeOutfit(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, errBadJSON)
		return
	}

	state, err := s.creditSvc.GetState(ctx, userID)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	if !state.CanConsume() {
		s.AbortWithError(c, creditdomain.ErrNoCredits)
		return
	}

	if err := s.limiter.AllowUpload(ctx, userID.String()); err != nil {
		s.AbortWithError(c, err)
		return
	}

	img, err := stylistdomain.ParseDataURL(req.ImageBase64)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	analysis, err := s.stylistSvc.AnalyzeOutfit(ctx, stylistdomain.AnalyzeRequest{
		Image:    img,
		UserName: req.UserName,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	if err := s.creditSvc.Consume(ctx, userID); err != nil {
		s.AbortWithError(c, err)
		return
	}

	if err := s.scanSvc.Record(ctx, userID, scandomain.RecordInput{
		MIMEType:     img.MIMEType,
		ImageData:    img.Data,
		AnalysisText: analysis,
	}); err != nil {
		// The analysis is already paid for and delivered; history is
		// best-effort.
		s.log.Warn("scan record failed", zap.String("user_id", userID.String()), zap.Error(err))
	}

	respondData(c, gin.H{"analysis": analysis})
}

func (s *Server) Chat(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, errBadJSON)
		return
	}

	state, err := s.creditSvc.GetState(ctx, userID)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	if !state.CanConsume() {
		s.AbortWithError(c, creditdomain.ErrNoCredits)
		return
	}

	chatReq := stylistdomain.ChatRequest{
		Message:  req.Message,
		History:  req.History,
		UserName: req.UserName,
	}
	if req.ImageBase64 != "" {
		img, err := stylistdomain.ParseDataURL(req.ImageBase64)
		if err != nil {
			s.AbortWithError(c, err)
			return
		}
		chatReq.Image = &img
	}

	response, err := s.stylistSvc.Chat(ctx, chatReq)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	if err := s.creditSvc.Consume(ctx, userID); err != nil {
		s.AbortWithError(c, err)
		return
	}

	respondData(c, gin.H{"response": response})
}

func (s *Server) CompareOutfits(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, errBadJSON)
		return
	}

	state, err := s.creditSvc.GetState(ctx, userID)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	if !state.CanConsume() {
		s.AbortWithError(c, creditdomain.ErrNoCredits)
		return
	}

	images := make([]stylistdomain.Image, 0, len(req.Images))
	for _, raw := range req.Images {
		img, err := stylistdomain.ParseDataURL(raw)
		if err != nil {
			s.AbortWithError(c, err)
			return
		}
		images = append(images, img)
	}

	comparison, err := s.stylistSvc.CompareOutfits(ctx, stylistdomain.CompareRequest{
		Images:   images,
		Occasion: req.Occasion,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	if err := s.creditSvc.Consume(ctx, userID); err != nil {
		s.AbortWithError(c, err)
		return
	}

	respondData(c, gin.H{"comparison": comparison})
}
