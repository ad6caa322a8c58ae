package auth

import (
	"go.uber.org/fx"

	"github.com/stylorenlabs/styloren/internal/auth/repository"
	"github.com/stylorenlabs/styloren/internal/auth/service"
)

var Module = fx.Options(
	fx.Provide(
		repository.Provide,
		service.NewService,
		NewLogSender,
	),
)
