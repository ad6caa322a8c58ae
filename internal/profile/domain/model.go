// Package domain defines the user profile collaborator: two display-only
// preferences read alongside credit state.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Profile struct {
	UserID          snowflake.ID `gorm:"primaryKey"`
	DisplayName     *string      `gorm:"type:text"`
	SaveScanHistory bool         `gorm:"not null;default:true"`
	CreatedAt       time.Time    `gorm:"not null"`
	UpdatedAt       time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "user_profiles" }

type Repository interface {
	// Get returns nil when no row exists; callers treat that as a zero
	// profile with SaveScanHistory on.
	Get(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Profile, error)
	Upsert(ctx context.Context, db *gorm.DB, p *Profile) error
	SetSaveScanHistory(ctx context.Context, db *gorm.DB, userID snowflake.ID, enabled bool, now time.Time) error
	SetDisplayName(ctx context.Context, db *gorm.DB, userID snowflake.ID, name *string, now time.Time) error
	DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
}
