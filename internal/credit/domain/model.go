// Package domain defines the prepaid credit ledger types and contracts.
package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Batch is one purchased grant of credits. CreditsTotal and ExpiresAt are
// fixed at purchase; only CreditsUsed moves, and only upward by one per
// consumption.
type Batch struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	UserID       snowflake.ID `gorm:"not null;index"`
	CreditsTotal int          `gorm:"not null"`
	CreditsUsed  int          `gorm:"not null;default:0"`
	PlanName     string       `gorm:"type:text;not null"`
	PurchasedAt  time.Time    `gorm:"not null"`
	ExpiresAt    time.Time    `gorm:"not null;index"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (Batch) TableName() string { return "credit_batches" }

// Expired reports whether the batch has passed its expiry at the given
// instant. Never stored; always computed from expires_at.
func (b *Batch) Expired(now time.Time) bool {
	return now.After(b.ExpiresAt)
}

// Remaining reports usable credits at the given instant. An expired batch
// contributes nothing regardless of its unused balance.
func (b *Batch) Remaining(now time.Time) int {
	if b.Expired(now) {
		return 0
	}
	if r := b.CreditsTotal - b.CreditsUsed; r > 0 {
		return r
	}
	return 0
}

// Active reports whether the batch is still eligible for consumption.
func (b *Batch) Active(now time.Time) bool {
	return !b.Expired(now) && b.Remaining(now) > 0
}

// BatchView is a batch with its time-derived fields evaluated.
type BatchView struct {
	ID               snowflake.ID `json:"id"`
	CreditsTotal     int          `json:"credits_total"`
	CreditsUsed      int          `json:"credits_used"`
	CreditsRemaining int          `json:"credits_remaining"`
	PlanName         string       `json:"plan_name"`
	PurchasedAt      time.Time    `json:"purchased_at"`
	ExpiresAt        time.Time    `json:"expires_at"`
	IsExpired        bool         `json:"is_expired"`
}

// State is the aggregate credit position of one user, evaluated at a single
// instant. Batches are ordered by expires_at ascending, the consumption
// order.
type State struct {
	Batches          []BatchView `json:"batches"`
	CreditsTotal     int         `json:"credits_total"`
	CreditsUsed      int         `json:"credits_used"`
	CreditsRemaining int         `json:"credits_remaining"`
	// Expired is true only when batches exist and none is usable. A user who
	// never purchased has zero batches and is not expired; the distinction
	// drives different paywall messaging.
	Expired         bool    `json:"is_expired"`
	DisplayName     *string `json:"display_name"`
	SaveScanHistory bool    `json:"save_scan_history"`
}

// NewState aggregates persisted batches into a State as of now. Input order
// is preserved, so callers must supply batches sorted by expires_at
// ascending.
func NewState(batches []Batch, displayName *string, saveScanHistory bool, now time.Time) *State {
	s := &State{
		Batches:         make([]BatchView, 0, len(batches)),
		DisplayName:     displayName,
		SaveScanHistory: saveScanHistory,
	}

	active := 0
	for i := range batches {
		b := &batches[i]
		view := BatchView{
			ID:               b.ID,
			CreditsTotal:     b.CreditsTotal,
			CreditsUsed:      b.CreditsUsed,
			CreditsRemaining: b.Remaining(now),
			PlanName:         b.PlanName,
			PurchasedAt:      b.PurchasedAt,
			ExpiresAt:        b.ExpiresAt,
			IsExpired:        b.Expired(now),
		}
		s.Batches = append(s.Batches, view)
		s.CreditsTotal += view.CreditsTotal
		s.CreditsUsed += view.CreditsUsed
		s.CreditsRemaining += view.CreditsRemaining
		if !view.IsExpired && view.CreditsRemaining > 0 {
			active++
		}
	}

	s.Expired = len(batches) > 0 && active == 0
	return s
}

// CanConsume is the single gate every credit-consuming feature checks before
// acting. Side-effect free.
func (s *State) CanConsume() bool {
	return s.CreditsRemaining > 0
}

// ActiveBatches returns the batches still eligible for consumption, in
// consumption order.
func (s *State) ActiveBatches() []BatchView {
	out := make([]BatchView, 0, len(s.Batches))
	for _, b := range s.Batches {
		if !b.IsExpired && b.CreditsRemaining > 0 {
			out = append(out, b)
		}
	}
	return out
}

// ExpiryInfo renders a display string for the soonest-expiring active batch,
// or "" when no batch is active.
func (s *State) ExpiryInfo(now time.Time) string {
	active := s.ActiveBatches()
	if len(active) == 0 {
		return ""
	}
	earliest := active[0]
	days := int(math.Ceil(earliest.ExpiresAt.Sub(now).Hours() / 24))
	switch {
	case days <= 0:
		return "Expires today"
	case days == 1:
		return "Expires tomorrow"
	case days <= 7:
		return fmt.Sprintf("Expires in %d days", days)
	default:
		return fmt.Sprintf("Expires on %s", earliest.ExpiresAt.Format("Jan 2, 2006"))
	}
}

// WithConsumed returns a copy of the state with one credit debited from the
// given batch. Used to patch the read cache after a confirmed write.
func (s *State) WithConsumed(batchID snowflake.ID) *State {
	next := *s
	next.Batches = make([]BatchView, len(s.Batches))
	copy(next.Batches, s.Batches)

	for i := range next.Batches {
		b := &next.Batches[i]
		if b.ID != batchID {
			continue
		}
		b.CreditsUsed++
		if b.CreditsRemaining > 0 {
			b.CreditsRemaining--
		}
		break
	}

	next.CreditsUsed = 0
	next.CreditsRemaining = 0
	active := 0
	for _, b := range next.Batches {
		next.CreditsUsed += b.CreditsUsed
		next.CreditsRemaining += b.CreditsRemaining
		if !b.IsExpired && b.CreditsRemaining > 0 {
			active++
		}
	}
	next.Expired = len(next.Batches) > 0 && active == 0
	return &next
}

// WithSaveScanHistory returns a copy of the state with the preference flag
// updated.
func (s *State) WithSaveScanHistory(enabled bool) *State {
	next := *s
	next.SaveScanHistory = enabled
	return &next
}
