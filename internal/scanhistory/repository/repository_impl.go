package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	scandomain "github.com/stylorenlabs/styloren/internal/scanhistory/domain"
)

type repo struct{}

func Provide() scandomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, s *scandomain.Scan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO scan_history (
			id, user_id, image_key, thumbnail_key, analysis_text,
			style_score, outfit_category, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.UserID,
		s.ImageKey,
		s.ThumbnailKey,
		s.AnalysisText,
		s.StyleScore,
		s.OutfitCategory,
		s.CreatedAt,
	).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit, offset int) ([]scandomain.Scan, error) {
	var items []scandomain.Scan
	err := db.WithContext(ctx).
		Model(&scandomain.Scan{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, userID, scanID snowflake.ID) (*scandomain.Scan, error) {
	var s scandomain.Scan
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", scanID, userID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, scanID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM scan_history WHERE id = ? AND user_id = ?`,
		scanID, userID,
	).Error
}

func (r *repo) ListKeysByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]string, error) {
	var keys []string
	err := db.WithContext(ctx).
		Model(&scandomain.Scan{}).
		Where("user_id = ?", userID).
		Pluck("image_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *repo) DeleteAllByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM scan_history WHERE user_id = ?`,
		userID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) UsersWithHistoryOff(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT sh.user_id FROM scan_history sh
		JOIN user_profiles up ON up.user_id = sh.user_id
		WHERE up.save_scan_history = ?`,
		false,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
