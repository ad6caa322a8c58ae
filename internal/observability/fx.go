// Package observability wires logging and tracing.
package observability

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stylorenlabs/styloren/internal/observability/logger"
	"github.com/stylorenlabs/styloren/internal/observability/tracing"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(tracing.NewProvider),
	fx.Invoke(func(log *zap.Logger) {
		zap.ReplaceGlobals(log)
	}),
	// Forces the provider through fx's lazy construction so tracing comes
	// up with the graph.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
