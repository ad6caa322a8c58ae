// Package logger provides the zap logger used across the service.
package logger

import (
	"github.com/stylorenlabs/styloren/internal/config"
	"go.uber.org/zap"
)

// New builds the root logger. Development gets a human-readable console
// encoder, everything else structured JSON.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
