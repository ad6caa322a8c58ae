package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/stylorenlabs/styloren/internal/auth/domain"
)

type repo struct{}

func Provide() authdomain.Repository {
	return &repo{}
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, u *authdomain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	).Error
}

func (r *repo) FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*authdomain.User, error) {
	var u authdomain.User
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*authdomain.User, error) {
	var u authdomain.User
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) UpdatePasswordHash(ctx context.Context, db *gorm.DB, userID snowflake.ID, hash string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, now, userID,
	).Error
}

func (r *repo) DeleteUser(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM users WHERE id = ?`, id,
	).Error
}

func (r *repo) InvalidateResetCodes(ctx context.Context, db *gorm.DB, email string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE password_reset_codes SET consumed_at = ?
		WHERE email = ? AND consumed_at IS NULL`,
		now, email,
	).Error
}

func (r *repo) InsertResetCode(ctx context.Context, db *gorm.DB, c *authdomain.PasswordResetCode) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO password_reset_codes (id, email, code_hash, attempts, consumed_at, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Email, c.CodeHash, c.Attempts, c.ConsumedAt, c.ExpiresAt, c.CreatedAt,
	).Error
}

func (r *repo) LatestResetCode(ctx context.Context, db *gorm.DB, email string, now time.Time) (*authdomain.PasswordResetCode, error) {
	var c authdomain.PasswordResetCode
	err := db.WithContext(ctx).
		Where("email = ? AND consumed_at IS NULL AND expires_at >= ?", email, now).
		Order("created_at DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) IncrementResetAttempts(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE password_reset_codes SET attempts = attempts + 1 WHERE id = ?`,
		id,
	).Error
}

func (r *repo) ConsumeResetCode(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE password_reset_codes SET consumed_at = ? WHERE id = ? AND consumed_at IS NULL`,
		now, id,
	).Error
}

func (r *repo) DeleteExpiredResetCodes(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM password_reset_codes WHERE expires_at < ? OR consumed_at IS NOT NULL`,
		before,
	)
	return res.RowsAffected, res.Error
}
