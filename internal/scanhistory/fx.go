package scanhistory

import (
	"go.uber.org/fx"

	"github.com/stylorenlabs/styloren/internal/scanhistory/repository"
	"github.com/stylorenlabs/styloren/internal/scanhistory/service"
)

var Module = fx.Options(
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
