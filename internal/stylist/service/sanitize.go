package service

import (
	"strings"

	"github.com/stylorenlabs/styloren/internal/stylist/domain"
)

const (
	maxUserNameLength = 100
	maxMessageLength  = 2000
	maxOccasionLength = 200
	maxHistoryLength  = 50
)

// sanitizeText strips characters usable for prompt injection, trims, and
// caps the length in runes.
func sanitizeText(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'', '`', '$', '{', '}', '\\':
			return -1
		}
		return r
	}, s)
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) > maxLength {
		return string(runes[:maxLength])
	}
	return cleaned
}

// sanitizeHistory drops malformed entries, keeping only user and assistant
// turns with content.
func sanitizeHistory(history []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(history))
	for _, msg := range history {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		out = append(out, msg)
	}
	return out
}
