package models

import "time"

// ReviewEvent is an immutable log entry written once per review
type ReviewEvent struct {
	ID             int64     `json:"id" db:"id"`
	ItemID         int64     `json:"item_id" db:"item_id"`
	Timestamp      time.Time `json:"timestamp" db:"reviewed_at"`
	Quality        int       `json:"quality" db:"quality"` // 1-5
	WasCorrect     bool      `json:"was_correct" db:"was_correct"`
	ResponseTimeMs *int64    `json:"response_time_ms,omitempty" db:"response_time_ms"`
	SessionID      *string   `json:"session_id,omitempty" db:"session_id"`
}
