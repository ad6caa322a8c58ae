package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	creditdomain "github.com/stylorenlabs/styloren/internal/credit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() creditdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, b *creditdomain.Batch) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO credit_batches (
			id, user_id, credits_total, credits_used, plan_name,
			purchased_at, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.UserID,
		b.CreditsTotal,
		b.CreditsUsed,
		b.PlanName,
		b.PurchasedAt,
		b.ExpiresAt,
		b.CreatedAt,
		b.UpdatedAt,
	).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]creditdomain.Batch, error) {
	var items []creditdomain.Batch
	err := db.WithContext(ctx).
		Model(&creditdomain.Batch{}).
		Where("user_id = ?", userID).
		Order("expires_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) IncrementUsed(ctx context.Context, db *gorm.DB, batchID snowflake.ID, lastKnownUsed int, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE credit_batches
		 SET credits_used = credits_used + 1, updated_at = ?
		 WHERE id = ? AND credits_used = ? AND credits_used < credits_total`,
		now,
		batchID,
		lastKnownUsed,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM credit_batches WHERE user_id = ?`,
		userID,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
