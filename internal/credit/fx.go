package credit

import (
	"github.com/stylorenlabs/styloren/internal/credit/repository"
	"github.com/stylorenlabs/styloren/internal/credit/service"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
