// Package server exposes the HTTP API: auth, the credit ledger, AI styling
// operations, scan history, and profile management.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/stylorenlabs/styloren/internal/auth/domain"
	"github.com/stylorenlabs/styloren/internal/clock"
	"github.com/stylorenlabs/styloren/internal/config"
	creditdomain "github.com/stylorenlabs/styloren/internal/credit/domain"
	profiledomain "github.com/stylorenlabs/styloren/internal/profile/domain"
	"github.com/stylorenlabs/styloren/internal/ratelimit"
	scandomain "github.com/stylorenlabs/styloren/internal/scanhistory/domain"
	stylistdomain "github.com/stylorenlabs/styloren/internal/stylist/domain"
)

type ServerParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Config      *config.Config
	AuthSvc     authdomain.Service
	CreditSvc   creditdomain.Service
	StylistSvc  stylistdomain.Service
	ScanSvc     scandomain.Service
	ProfileRepo profiledomain.Repository
	Limiter     ratelimit.Limiter
}

type Server struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	cfg         *config.Config
	authSvc     authdomain.Service
	creditSvc   creditdomain.Service
	stylistSvc  stylistdomain.Service
	scanSvc     scandomain.Service
	profileRepo profiledomain.Repository
	limiter     ratelimit.Limiter
}

func New(p ServerParam) *Server {
	return &Server{
		db:          p.DB,
		log:         p.Log.Named("server"),
		clock:       p.Clock,
		cfg:         p.Config,
		authSvc:     p.AuthSvc,
		creditSvc:   p.CreditSvc,
		stylistSvc:  p.StylistSvc,
		scanSvc:     p.ScanSvc,
		profileRepo: p.ProfileRepo,
		limiter:     p.Limiter,
	}
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(Start),
)

// Start runs the HTTP server under the fx lifecycle.
func Start(lc fx.Lifecycle, s *Server, cfg *config.Config, log *zap.Logger) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
