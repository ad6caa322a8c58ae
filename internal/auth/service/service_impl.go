package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stylorenlabs/styloren/internal/auth/domain"
	"github.com/stylorenlabs/styloren/internal/clock"
	"github.com/stylorenlabs/styloren/internal/config"
	"github.com/stylorenlabs/styloren/internal/observability/logger"
	profiledomain "github.com/stylorenlabs/styloren/internal/profile/domain"
	"github.com/stylorenlabs/styloren/internal/ratelimit"
)

const minPasswordLength = 8

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Node        *snowflake.Node
	Config      *config.Config
	Repo        domain.Repository
	ProfileRepo profiledomain.Repository
	Limiter     ratelimit.Limiter
	Sender      domain.Sender
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	node        *snowflake.Node
	cfg         *config.Config
	repo        domain.Repository
	profileRepo profiledomain.Repository
	limiter     ratelimit.Limiter
	sender      domain.Sender
}

func NewService(p ServiceParam) domain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("auth.service"),
		clock:       p.Clock,
		node:        p.Node,
		cfg:         p.Config,
		repo:        p.Repo,
		profileRepo: p.ProfileRepo,
		limiter:     p.Limiter,
		sender:      p.Sender,
	}
}

func (s *service) Signup(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := hashPassword(password, s.argonParams())
	if err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	user := &domain.User{
		ID:           s.node.Generate(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertUser(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := s.profileRepo.Upsert(ctx, s.db, &profiledomain.Profile{
		UserID:          user.ID,
		SaveScanHistory: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		// The account exists; the profile row will be created on first
		// preference write instead.
		s.log.Warn("profile bootstrap failed", zap.Error(err))
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID.String()),
		zap.String("email", logger.MaskEmail(email)))
	return s.issueSession(ctx, user.ID)
}

func (s *service) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !verifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueSession(ctx, user.ID)
}

func (s *service) VerifyToken(token string) (snowflake.ID, error) {
	return parseToken([]byte(s.cfg.Auth.JWTSecret), token)
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	if err := s.limiter.AllowOTPRequest(ctx, email); err != nil {
		if errors.Is(err, ratelimit.ErrLimited) {
			// Swallowed: the response must not reveal whether the address
			// exists or how often it has been tried.
			s.log.Warn("reset request rate limited", zap.String("email", logger.MaskEmail(email)))
			return nil
		}
		return err
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil
	}

	now := s.clock.Now(ctx)
	if err := s.repo.InvalidateResetCodes(ctx, s.db, email, now); err != nil {
		return fmt.Errorf("invalidate reset codes: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}

	rec := &domain.PasswordResetCode{
		ID:        s.node.Generate(),
		Email:     email,
		CodeHash:  hashOTP(code),
		ExpiresAt: now.Add(s.cfg.Auth.OTPTTL),
		CreatedAt: now,
	}
	if err := s.repo.InsertResetCode(ctx, s.db, rec); err != nil {
		return fmt.Errorf("insert reset code: %w", err)
	}

	if err := s.sender.SendResetCode(ctx, email, code); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}

	s.log.Info("reset code issued", zap.String("email", logger.MaskEmail(email)))
	return nil
}

func (s *service) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if !otpPattern.MatchString(code) {
		return domain.ErrCodeInvalid
	}
	if len(newPassword) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}

	now := s.clock.Now(ctx)
	rec, err := s.repo.LatestResetCode(ctx, s.db, email, now)
	if err != nil {
		return fmt.Errorf("lookup reset code: %w", err)
	}
	if rec == nil {
		return domain.ErrCodeInvalid
	}
	if rec.Attempts >= s.cfg.Auth.OTPMaxAttempts {
		return domain.ErrTooManyAttempts
	}

	if !otpMatches(code, rec.CodeHash) {
		if err := s.repo.IncrementResetAttempts(ctx, s.db, rec.ID); err != nil {
			s.log.Error("attempt counter update failed", zap.Error(err))
		}
		return domain.ErrCodeInvalid
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return domain.ErrCodeInvalid
	}

	hash, err := hashPassword(newPassword, s.argonParams())
	if err != nil {
		return err
	}

	if err := s.repo.ConsumeResetCode(ctx, s.db, rec.ID, now); err != nil {
		return fmt.Errorf("consume reset code: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, s.db, user.ID, hash, now); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info("password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *service) DeleteAccount(ctx context.Context, userID snowflake.ID) error {
	user, err := s.repo.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil
	}

	now := s.clock.Now(ctx)
	if err := s.repo.InvalidateResetCodes(ctx, s.db, user.Email, now); err != nil {
		return fmt.Errorf("invalidate reset codes: %w", err)
	}
	if err := s.repo.DeleteUser(ctx, s.db, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info("account deleted", zap.String("user_id", userID.String()),
		zap.String("email", logger.MaskEmail(user.Email)))
	return nil
}

func (s *service) issueSession(ctx context.Context, userID snowflake.ID) (*domain.Session, error) {
	token, expiresAt, err := signToken([]byte(s.cfg.Auth.JWTSecret), userID, s.clock.Now(ctx), s.cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, UserID: userID, ExpiresAt: expiresAt}, nil
}

func (s *service) argonParams() argonParams {
	return argonParams{
		memory:  s.cfg.Auth.Argon2Memory,
		time:    s.cfg.Auth.Argon2Time,
		threads: s.cfg.Auth.Argon2Threads,
		keyLen:  s.cfg.Auth.Argon2KeyLength,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return domain.ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}
	return nil
}
