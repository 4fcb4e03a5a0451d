package models

import "time"

// Creation defaults for a learning item.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MinLevel          = 1
	MaxLevel          = 6
)

// LearningItem is one vocabulary entry together with its review state
type LearningItem struct {
	ID             int64      `json:"id" db:"id"`
	Term           string     `json:"term" db:"term"`
	Translation    string     `json:"translation" db:"translation"`
	Pronunciation  string     `json:"pronunciation,omitempty" db:"pronunciation"`
	LevelTag       int        `json:"level" db:"level_tag"`
	TimesSeen      int        `json:"times_seen" db:"times_seen"`
	TimesCorrect   int        `json:"times_correct" db:"times_correct"`
	TimesIncorrect int        `json:"times_incorrect" db:"times_incorrect"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty" db:"last_seen_at"` // nil until first review
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`
	Interval       int        `json:"interval" db:"interval_days"` // days
	Repetitions    int        `json:"repetitions" db:"repetitions"`
	NextReviewDue  *time.Time `json:"next_review_due,omitempty" db:"next_review_due"` // nil until scheduled
}

// NewLearningItem returns an item at its creation defaults.
func NewLearningItem(term, translation string, level int) LearningItem {
	return LearningItem{
		Term:        term,
		Translation: translation,
		LevelTag:    level,
		EaseFactor:  DefaultEaseFactor,
	}
}

// IsNew reports whether the item has never been reviewed.
func (i LearningItem) IsNew() bool {
	return i.TimesSeen == 0
}

// IsDue reports whether the item is scheduled and its due date has passed.
func (i LearningItem) IsDue(now time.Time) bool {
	return i.NextReviewDue != nil && !i.NextReviewDue.After(now)
}

// ResetProgress returns a copy of the item restored to creation defaults.
// Identity and vocabulary payload are kept.
func (i LearningItem) ResetProgress() LearningItem {
	out := NewLearningItem(i.Term, i.Translation, i.LevelTag)
	out.ID = i.ID
	out.Pronunciation = i.Pronunciation
	return out
}
