// Package ratelimit provides redis-backed fixed-window counters.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stylorenlabs/styloren/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrLimited = errors.New("rate_limited")

type Limiter interface {
	// AllowUpload gates image uploads per user.
	AllowUpload(ctx context.Context, subject string) error
	// AllowOTPRequest gates password-reset code requests per email.
	AllowOTPRequest(ctx context.Context, subject string) error
}

type ServiceParam struct {
	fx.In

	Redis  *redis.Client
	Log    *zap.Logger
	Config *config.Config
}

type service struct {
	redis *redis.Client
	log   *zap.Logger
	cfg   *config.Config
}

func NewService(p ServiceParam) Limiter {
	return &service{
		redis: p.Redis,
		log:   p.Log.Named("ratelimit.service"),
		cfg:   p.Config,
	}
}

func (s *service) AllowUpload(ctx context.Context, subject string) error {
	return s.allow(ctx, "uploads", subject, s.cfg.RateLimit.UploadLimit, s.cfg.RateLimit.UploadWindow)
}

func (s *service) AllowOTPRequest(ctx context.Context, subject string) error {
	return s.allow(ctx, "otp", subject, s.cfg.RateLimit.OTPLimit, s.cfg.RateLimit.OTPWindow)
}

func (s *service) allow(ctx context.Context, scope, subject string, limit int, window time.Duration) error {
	if !s.cfg.RateLimit.Enabled {
		return nil
	}

	bucket := time.Now().UTC().Truncate(window).Unix()
	key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, subject, bucket)

	val, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		s.log.Error("rate limit counter failed", zap.String("scope", scope), zap.Error(err))
		if s.cfg.RateLimit.FailOpenRedis {
			// Fail open rather than blocking the feature on a redis outage.
			return nil
		}
		return err
	}

	if val == 1 {
		s.redis.Expire(ctx, key, window+time.Minute)
	}

	if val > int64(limit) {
		return ErrLimited
	}

	return nil
}
