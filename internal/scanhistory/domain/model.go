// Package domain defines stored outfit scans: the private image key plus
// the analysis that produced it.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrScanNotFound = errors.New("scan_not_found")

// PageSize is the fixed page length for history listings.
const PageSize = 10

type Scan struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	UserID         snowflake.ID `gorm:"not null;index"`
	ImageKey       string       `gorm:"type:text;not null"`
	ThumbnailKey   *string      `gorm:"type:text"`
	AnalysisText   string       `gorm:"type:text;not null"`
	StyleScore     *int
	OutfitCategory *string   `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (Scan) TableName() string { return "scan_history" }

// ScanView is a Scan with a short-lived signed URL in place of the raw
// storage key.
type ScanView struct {
	ID             snowflake.ID `json:"id"`
	AnalysisText   string       `json:"analysis_text"`
	StyleScore     *int         `json:"style_score,omitempty"`
	OutfitCategory *string      `json:"outfit_category,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	SignedImageURL string       `json:"signed_image_url,omitempty"`
}

type RecordInput struct {
	MIMEType       string
	ImageData      []byte
	AnalysisText   string
	StyleScore     *int
	OutfitCategory *string
}

type Page struct {
	Scans   []ScanView `json:"scans"`
	HasMore bool       `json:"has_more"`
}

type Service interface {
	// Record stores the image and the analysis row. It is a no-op when the
	// user has scan history saving turned off.
	Record(ctx context.Context, userID snowflake.ID, in RecordInput) error

	// List returns one page of scans, newest first, with signed image URLs.
	List(ctx context.Context, userID snowflake.ID, page int) (*Page, error)

	// Delete removes one scan and its stored image.
	Delete(ctx context.Context, userID, scanID snowflake.ID) error

	// DeleteAll removes every scan and stored image for the user.
	DeleteAll(ctx context.Context, userID snowflake.ID) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, s *Scan) error
	// ListByUser returns up to limit scans ordered by created_at descending.
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit, offset int) ([]Scan, error)
	Get(ctx context.Context, db *gorm.DB, userID, scanID snowflake.ID) (*Scan, error)
	Delete(ctx context.Context, db *gorm.DB, userID, scanID snowflake.ID) error
	ListKeysByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]string, error)
	DeleteAllByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	// UsersWithHistoryOff returns ids of users who still have scans stored
	// but have opted out of history saving.
	UsersWithHistoryOff(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
}
