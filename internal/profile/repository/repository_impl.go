package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	profiledomain "github.com/stylorenlabs/styloren/internal/profile/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() profiledomain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*profiledomain.Profile, error) {
	var p profiledomain.Profile
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, p *profiledomain.Profile) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE user_profiles
		 SET display_name = ?, save_scan_history = ?, updated_at = ?
		 WHERE user_id = ?`,
		p.DisplayName,
		p.SaveScanHistory,
		p.UpdatedAt,
		p.UserID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_profiles (user_id, display_name, save_scan_history, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.UserID,
		p.DisplayName,
		p.SaveScanHistory,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) SetSaveScanHistory(ctx context.Context, db *gorm.DB, userID snowflake.ID, enabled bool, now time.Time) error {
	return r.setField(ctx, db, userID, "save_scan_history", enabled, now)
}

func (r *repo) SetDisplayName(ctx context.Context, db *gorm.DB, userID snowflake.ID, name *string, now time.Time) error {
	return r.setField(ctx, db, userID, "display_name", name, now)
}

func (r *repo) setField(ctx context.Context, db *gorm.DB, userID snowflake.ID, column string, value any, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&profiledomain.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{column: value, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// First preference write for this user creates the row. Raw SQL so a
	// false save_scan_history is written as given; gorm's Create would drop
	// the zero value in favor of the column default.
	p := profiledomain.Profile{
		UserID:          userID,
		SaveScanHistory: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	switch column {
	case "save_scan_history":
		p.SaveScanHistory = value.(bool)
	case "display_name":
		p.DisplayName = value.(*string)
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_profiles (user_id, display_name, save_scan_history, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.UserID,
		p.DisplayName,
		p.SaveScanHistory,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM user_profiles WHERE user_id = ?`,
		userID,
	).Error
}
