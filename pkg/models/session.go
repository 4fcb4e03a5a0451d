package models

import (
	"fmt"
	"strings"
	"time"
)

// AccessTier gates which scheduling branch applies
type AccessTier string

const (
	TierFree    AccessTier = "free"
	TierPremium AccessTier = "premium"
)

// IsPremium reports whether t is the premium tier.
func (t AccessTier) IsPremium() bool {
	return t == TierPremium
}

// ParseAccessTier parses "free" or "premium" (case-insensitive).
func ParseAccessTier(s string) (AccessTier, error) {
	switch AccessTier(strings.ToLower(strings.TrimSpace(s))) {
	case TierFree:
		return TierFree, nil
	case TierPremium:
		return TierPremium, nil
	}
	return "", fmt.Errorf("unknown access tier %q", s)
}

// TierFor maps an entitlement flag to a tier.
func TierFor(premium bool) AccessTier {
	if premium {
		return TierPremium
	}
	return TierFree
}

// SessionState is one bounded learning run
type SessionState struct {
	ID                string     `json:"id" db:"id"`
	StartedAt         time.Time  `json:"started_at" db:"started_at"`
	EndedAt           *time.Time `json:"ended_at,omitempty" db:"ended_at"` // nil while open
	Goal              int        `json:"goal" db:"goal"`
	WordsReviewed     int        `json:"words_reviewed" db:"words_reviewed"`
	CorrectCount      int        `json:"correct_count" db:"correct_count"`
	IncorrectCount    int        `json:"incorrect_count" db:"incorrect_count"`
	AccessTierAtStart AccessTier `json:"access_tier" db:"access_tier"`
}

// IsOpen reports whether the session has not been closed yet.
func (s SessionState) IsOpen() bool {
	return s.EndedAt == nil
}

// Close marks the session ended at now. Closing twice keeps the first end time.
func (s *SessionState) Close(now time.Time) {
	if s.EndedAt != nil {
		return
	}
	s.EndedAt = &now
}
