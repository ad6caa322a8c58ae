package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authdomain "github.com/stylorenlabs/styloren/internal/auth/domain"
	creditdomain "github.com/stylorenlabs/styloren/internal/credit/domain"
	"github.com/stylorenlabs/styloren/internal/ratelimit"
	scandomain "github.com/stylorenlabs/styloren/internal/scanhistory/domain"
	stylistdomain "github.com/stylorenlabs/styloren/internal/stylist/domain"
)

type apiError struct {
	status  int
	code    string
	message string
}

var (
	errUnauthorized   = apiError{http.StatusUnauthorized, "unauthorized", "Unauthorized"}
	errInvalidRequest = apiError{http.StatusBadRequest, "invalid_request", "Invalid request"}
	errInternal       = apiError{http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again."}
)

// errBadJSON marks an unparseable request body.
var errBadJSON = errors.New("bad_json")

// AbortWithError translates domain errors into HTTP responses. Unknown
// errors become a generic 500 so internals never leak.
func (s *Server) AbortWithError(c *gin.Context, err error) {
	e := s.classify(err)
	if e.status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(e.status, gin.H{"error": e.code, "message": e.message})
}

func (s *Server) classify(err error) apiError {
	switch {
	case errors.Is(err, errBadJSON):
		return errInvalidRequest
	case errors.Is(err, creditdomain.ErrNoCredits):
		return apiError{http.StatusPaymentRequired, "no_credits", "You're out of credits. Purchase a plan to continue."}
	case errors.Is(err, creditdomain.ErrPlanNotFound):
		return apiError{http.StatusBadRequest, "plan_not_found", "Unknown plan"}

	case errors.Is(err, ratelimit.ErrLimited):
		return apiError{http.StatusTooManyRequests, "rate_limit_exceeded", "You're uploading too fast. Please wait a moment and try again."}
	case errors.Is(err, stylistdomain.ErrRateLimited):
		return apiError{http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please try again in a moment."}
	case errors.Is(err, stylistdomain.ErrQuotaExhausted):
		return apiError{http.StatusPaymentRequired, "upstream_credits", "AI credits depleted. Please add credits to continue."}

	case errors.Is(err, stylistdomain.ErrNoImage):
		return apiError{http.StatusBadRequest, "no_image", "No image provided"}
	case errors.Is(err, stylistdomain.ErrImageTooLarge):
		return apiError{http.StatusBadRequest, "image_too_large", "Image too large. Maximum size is 10MB."}
	case errors.Is(err, stylistdomain.ErrInvalidImage):
		return apiError{http.StatusBadRequest, "invalid_image", "Invalid image format"}
	case errors.Is(err, stylistdomain.ErrInvalidMessage):
		return apiError{http.StatusBadRequest, "invalid_message", "Invalid message"}
	case errors.Is(err, stylistdomain.ErrHistoryTooLong):
		return apiError{http.StatusBadRequest, "history_too_long", "Conversation history too long"}
	case errors.Is(err, stylistdomain.ErrTooFewImages):
		return apiError{http.StatusBadRequest, "too_few_images", "At least 2 images are required"}
	case errors.Is(err, stylistdomain.ErrTooManyImages):
		return apiError{http.StatusBadRequest, "too_many_images", "Maximum 4 images allowed"}

	case errors.Is(err, authdomain.ErrEmailTaken):
		return apiError{http.StatusConflict, "email_taken", "An account with this email already exists"}
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"}
	case errors.Is(err, authdomain.ErrTokenInvalid):
		return errUnauthorized
	case errors.Is(err, authdomain.ErrCodeInvalid):
		return apiError{http.StatusBadRequest, "invalid_code", "Invalid or expired code"}
	case errors.Is(err, authdomain.ErrTooManyAttempts):
		return apiError{http.StatusTooManyRequests, "too_many_attempts", "Too many attempts. Please request a new code."}

	case errors.Is(err, scandomain.ErrScanNotFound):
		return apiError{http.StatusNotFound, "scan_not_found", "Scan not found"}
	}
	return errInternal
}
