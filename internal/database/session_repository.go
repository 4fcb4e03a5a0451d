package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/wordsrs/internal/session"
	"github.com/example/wordsrs/pkg/models"
)

const sessionColumns = `id, started_at, ended_at, goal, words_reviewed,
	correct_count, incorrect_count, access_tier`

// GetSession returns a session by ID
func (r *ItemRepository) GetSession(ctx context.Context, id string) (models.SessionState, error) {
	var s models.SessionState
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)
	err := r.db.GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SessionState{}, fmt.Errorf("session %s: %w", id, session.ErrNotFound)
	}
	if err != nil {
		return models.SessionState{}, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// ListOpenSessions returns sessions that have not ended, oldest first
func (r *ItemRepository) ListOpenSessions(ctx context.Context) ([]models.SessionState, error) {
	sessions := []models.SessionState{}
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE ended_at IS NULL ORDER BY started_at`
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	return sessions, nil
}

// EventsForItem returns the review history of an item, oldest first
func (r *ItemRepository) EventsForItem(ctx context.Context, itemID int64) ([]models.ReviewEvent, error) {
	events := []models.ReviewEvent{}
	query := r.db.Rebind(`
		SELECT id, item_id, reviewed_at, quality, was_correct, response_time_ms, session_id
		FROM review_events WHERE item_id = ? ORDER BY id
	`)
	if err := r.db.SelectContext(ctx, &events, query, itemID); err != nil {
		return nil, fmt.Errorf("failed to get review events: %w", err)
	}
	return events, nil
}
