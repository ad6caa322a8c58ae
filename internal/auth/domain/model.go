// Package domain defines the identity collaborator: accounts, sessions, and
// OTP password reset.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrTokenInvalid       = errors.New("token_invalid")
	ErrCodeInvalid        = errors.New("reset_code_invalid")
	ErrTooManyAttempts    = errors.New("reset_too_many_attempts")
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Email        string       `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string       `gorm:"type:text;not null"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// PasswordResetCode is a single-use 6-digit OTP. The code itself is stored
// hashed.
type PasswordResetCode struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Email      string       `gorm:"type:text;not null;index"`
	CodeHash   string       `gorm:"type:text;not null"`
	Attempts   int          `gorm:"not null;default:0"`
	ConsumedAt *time.Time
	ExpiresAt  time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (PasswordResetCode) TableName() string { return "password_reset_codes" }

type Session struct {
	Token     string       `json:"token"`
	UserID    snowflake.ID `json:"user_id"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type Service interface {
	Signup(ctx context.Context, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)

	// VerifyToken validates a bearer token and returns the subject user id.
	VerifyToken(token string) (snowflake.ID, error)

	// RequestPasswordReset issues an OTP for the email. Unknown addresses are
	// not distinguishable from known ones by the caller.
	RequestPasswordReset(ctx context.Context, email string) error

	// ConfirmPasswordReset consumes a valid OTP and sets the new password.
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error

	// DeleteAccount removes the user row and any outstanding reset codes.
	// Domain data owned by other services is deleted by the caller first.
	DeleteAccount(ctx context.Context, userID snowflake.ID) error
}

type Repository interface {
	InsertUser(ctx context.Context, db *gorm.DB, u *User) error
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	UpdatePasswordHash(ctx context.Context, db *gorm.DB, userID snowflake.ID, hash string, now time.Time) error
	DeleteUser(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// InvalidateResetCodes voids all outstanding codes for the email before a
	// new one is issued.
	InvalidateResetCodes(ctx context.Context, db *gorm.DB, email string, now time.Time) error
	InsertResetCode(ctx context.Context, db *gorm.DB, c *PasswordResetCode) error
	// LatestResetCode returns the newest unconsumed, unexpired code for the
	// email, or nil.
	LatestResetCode(ctx context.Context, db *gorm.DB, email string, now time.Time) (*PasswordResetCode, error)
	IncrementResetAttempts(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ConsumeResetCode(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
	DeleteExpiredResetCodes(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
}

// Sender delivers reset codes out of band. The SMTP integration lives
// behind this seam so tests can capture codes.
type Sender interface {
	SendResetCode(ctx context.Context, email, code string) error
}
