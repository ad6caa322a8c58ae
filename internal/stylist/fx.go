package stylist

import (
	"go.uber.org/fx"

	"github.com/stylorenlabs/styloren/internal/stylist/service"
)

var Module = fx.Options(
	fx.Provide(service.NewService),
)
