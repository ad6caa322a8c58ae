package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/stylorenlabs/styloren/internal/auth/domain"
	"github.com/stylorenlabs/styloren/internal/observability/logger"
)

// logSender writes reset codes to the log instead of delivering mail. Mail
// delivery sits behind domain.Sender so a real transport can replace this
// without touching the reset flow.
type logSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) domain.Sender {
	return &logSender{log: log.Named("auth.sender")}
}

func (s *logSender) SendResetCode(ctx context.Context, email, code string) error {
	s.log.Info("password reset code",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("code", code),
	)
	return nil
}
