// Package domain defines the stylist collaborator: AI-backed outfit
// analysis, chat, and comparison.
package domain

import (
	"context"
	"errors"
)

var (
	// ErrRateLimited maps upstream throttling; callers retry later.
	ErrRateLimited = errors.New("stylist_rate_limited")
	// ErrQuotaExhausted means the AI account is out of credits.
	ErrQuotaExhausted = errors.New("stylist_quota_exhausted")

	ErrNoImage        = errors.New("no_image")
	ErrImageTooLarge  = errors.New("image_too_large")
	ErrInvalidImage   = errors.New("invalid_image_format")
	ErrInvalidMessage = errors.New("invalid_message")
	ErrHistoryTooLong = errors.New("history_too_long")
	ErrTooFewImages   = errors.New("too_few_images")
	ErrTooManyImages  = errors.New("too_many_images")
	ErrEmptyResponse  = errors.New("empty_model_response")
)

// Image is a decoded upload. MIMEType is the subtype only ("jpeg", "png").
type Image struct {
	MIMEType string
	Data     []byte
}

type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type AnalyzeRequest struct {
	Image    Image
	UserName string
}

type ChatRequest struct {
	Message  string
	Image    *Image
	History  []ChatMessage
	UserName string
}

type CompareRequest struct {
	Images   []Image
	Occasion string
}

type Service interface {
	// AnalyzeOutfit reviews a single outfit photo and returns markdown
	// advice.
	AnalyzeOutfit(ctx context.Context, req AnalyzeRequest) (string, error)

	// Chat continues a styling conversation, optionally grounded on a photo.
	Chat(ctx context.Context, req ChatRequest) (string, error)

	// CompareOutfits ranks 2-4 outfit photos and picks a winner.
	CompareOutfits(ctx context.Context, req CompareRequest) (string, error)
}
