package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordsrs/internal/session"
	"github.com/example/wordsrs/pkg/models"
)

// ErrDateOutOfRange is returned for dates the store cannot round-trip.
// Timestamps are kept as text, which only orders and parses for 4-digit years.
var ErrDateOutOfRange = errors.New("date beyond year 9999")

const maxStoredYear = 9999

func checkDate(field string, t *time.Time) error {
	if t != nil && t.UTC().Year() > maxStoredYear {
		return fmt.Errorf("%s %s: %w", field, t.UTC().Format("2006-01-02"), ErrDateOutOfRange)
	}
	return nil
}

// writer performs review writes against either the pool or a transaction.
type writer struct {
	ext sqlx.ExtContext
}

func (w writer) Save(ctx context.Context, item models.LearningItem) error {
	if err := checkDate("next review", item.NextReviewDue); err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	if err := checkDate("last seen", item.LastSeenAt); err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	query := w.ext.Rebind(`
		UPDATE learning_items SET
			term = ?, translation = ?, pronunciation = ?, level_tag = ?,
			times_seen = ?, times_correct = ?, times_incorrect = ?, last_seen_at = ?,
			ease_factor = ?, interval_days = ?, repetitions = ?, next_review_due = ?
		WHERE id = ?
	`)
	res, err := w.ext.ExecContext(ctx, query,
		item.Term, item.Translation, item.Pronunciation, item.LevelTag,
		item.TimesSeen, item.TimesCorrect, item.TimesIncorrect, utcPtr(item.LastSeenAt),
		item.EaseFactor, item.Interval, item.Repetitions, utcPtr(item.NextReviewDue),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %d: %w", item.ID, session.ErrNotFound)
	}
	return nil
}

func (w writer) AppendEvent(ctx context.Context, event models.ReviewEvent) error {
	args := []interface{}{
		event.ItemID,
		event.Timestamp.UTC(),
		event.Quality,
		event.WasCorrect,
		event.ResponseTimeMs,
		event.SessionID,
	}
	query := `
		INSERT INTO review_events (item_id, reviewed_at, quality, was_correct, response_time_ms, session_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := w.ext.ExecContext(ctx, w.ext.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to append review event: %w", err)
	}
	return nil
}

// SaveSession inserts the session or overwrites its counters and end time.
func (w writer) SaveSession(ctx context.Context, s models.SessionState) error {
	query := w.ext.Rebind(`
		INSERT INTO sessions (id, started_at, ended_at, goal, words_reviewed, correct_count, incorrect_count, access_tier)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			ended_at = excluded.ended_at,
			goal = excluded.goal,
			words_reviewed = excluded.words_reviewed,
			correct_count = excluded.correct_count,
			incorrect_count = excluded.incorrect_count
	`)
	_, err := w.ext.ExecContext(ctx, query,
		s.ID, s.StartedAt.UTC(), utcPtr(s.EndedAt), s.Goal,
		s.WordsReviewed, s.CorrectCount, s.IncorrectCount, string(s.AccessTierAtStart),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
