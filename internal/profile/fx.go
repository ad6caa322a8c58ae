package profile

import (
	"github.com/stylorenlabs/styloren/internal/profile/repository"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(repository.Provide),
)
