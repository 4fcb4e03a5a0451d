package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordsrs/internal/session"
	"github.com/example/wordsrs/internal/spaced_repetition"
	"github.com/example/wordsrs/pkg/models"
)

const itemColumns = `id, term, translation, pronunciation, level_tag,
	times_seen, times_correct, times_incorrect, last_seen_at,
	ease_factor, interval_days, repetitions, next_review_due`

// ItemRepository is the SQL implementation of session.Repository.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new repository instance
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

var (
	_ session.Repository = (*ItemRepository)(nil)
	_ session.Transactor = (*ItemRepository)(nil)
)

// selectIn runs a query with a level list bound through sqlx.In.
func (r *ItemRepository) selectIn(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return r.db.SelectContext(ctx, dest, r.db.Rebind(query), args...)
}

// dueCondition matches items due at the bound time, counting items seen but
// never scheduled as overdue.
const dueCondition = `((next_review_due IS NOT NULL AND next_review_due <= ?)
	OR (next_review_due IS NULL AND times_seen > 0))`

// FetchByLevelsAndDue returns items due at now: never scheduled first, then
// earliest due first
func (r *ItemRepository) FetchByLevelsAndDue(ctx context.Context, levels []int, now time.Time) ([]models.LearningItem, error) {
	items := []models.LearningItem{}
	if len(levels) == 0 {
		return items, nil
	}
	query := `SELECT ` + itemColumns + ` FROM learning_items
		WHERE level_tag IN (?) AND ` + dueCondition + `
		ORDER BY (next_review_due IS NOT NULL), next_review_due, id`
	if err := r.selectIn(ctx, &items, query, levels, now.UTC()); err != nil {
		return nil, fmt.Errorf("failed to get due items: %w", err)
	}
	return items, nil
}

// FetchByLevelsUnseen returns up to limit never-reviewed items in insertion order
func (r *ItemRepository) FetchByLevelsUnseen(ctx context.Context, levels []int, limit int) ([]models.LearningItem, error) {
	items := []models.LearningItem{}
	if len(levels) == 0 || limit <= 0 {
		return items, nil
	}
	query := `SELECT ` + itemColumns + ` FROM learning_items
		WHERE level_tag IN (?) AND times_seen = 0
		ORDER BY id LIMIT ?`
	if err := r.selectIn(ctx, &items, query, levels, limit); err != nil {
		return nil, fmt.Errorf("failed to get unseen items: %w", err)
	}
	return items, nil
}

// FetchByLevels returns every item of the given levels
func (r *ItemRepository) FetchByLevels(ctx context.Context, levels []int) ([]models.LearningItem, error) {
	items := []models.LearningItem{}
	if len(levels) == 0 {
		return items, nil
	}
	query := `SELECT ` + itemColumns + ` FROM learning_items
		WHERE level_tag IN (?) ORDER BY id`
	if err := r.selectIn(ctx, &items, query, levels); err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	return items, nil
}

// GetItem returns an item by ID
func (r *ItemRepository) GetItem(ctx context.Context, id int64) (models.LearningItem, error) {
	var item models.LearningItem
	query := r.db.Rebind(`SELECT ` + itemColumns + ` FROM learning_items WHERE id = ?`)
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LearningItem{}, fmt.Errorf("item %d: %w", id, session.ErrNotFound)
	}
	if err != nil {
		return models.LearningItem{}, fmt.Errorf("failed to get item by ID: %w", err)
	}
	return item, nil
}

// CreateItems inserts items at their creation defaults. Items whose term
// already exists at the same level are skipped. Returns how many were added.
func (r *ItemRepository) CreateItems(ctx context.Context, items []models.LearningItem) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO learning_items (term, translation, pronunciation, level_tag, ease_factor)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (term, level_tag) DO NOTHING
	`)
	created := 0
	for _, it := range items {
		res, err := tx.ExecContext(ctx, query, it.Term, it.Translation, it.Pronunciation, it.LevelTag, models.DefaultEaseFactor)
		if err != nil {
			return 0, fmt.Errorf("failed to create item %q: %w", it.Term, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to create item %q: %w", it.Term, err)
		}
		created += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit items: %w", err)
	}
	return created, nil
}

// ResetProgress restores all items of the given levels to creation defaults.
// Review history is kept.
func (r *ItemRepository) ResetProgress(ctx context.Context, levels []int) (int64, error) {
	if len(levels) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`
		UPDATE learning_items SET
			times_seen = 0, times_correct = 0, times_incorrect = 0,
			last_seen_at = NULL, ease_factor = ?, interval_days = 0,
			repetitions = 0, next_review_due = NULL
		WHERE level_tag IN (?)
	`, models.DefaultEaseFactor, levels)
	if err != nil {
		return 0, fmt.Errorf("failed to reset progress: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reset progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to reset progress: %w", err)
	}
	return n, nil
}

// LevelStats aggregates the items of each requested level that has any.
func (r *ItemRepository) LevelStats(ctx context.Context, levels []int, now time.Time) ([]models.LevelStats, error) {
	stats := []models.LevelStats{}
	if len(levels) == 0 {
		return stats, nil
	}
	query := `
		SELECT level_tag,
			COUNT(*) AS total,
			SUM(CASE WHEN times_seen = 0 THEN 1 ELSE 0 END) AS unseen,
			SUM(CASE WHEN ` + dueCondition + ` THEN 1 ELSE 0 END) AS due,
			SUM(CASE WHEN repetitions >= ? AND interval_days >= ? THEN 1 ELSE 0 END) AS mastered,
			AVG(ease_factor) AS avg_ease_factor
		FROM learning_items
		WHERE level_tag IN (?)
		GROUP BY level_tag
		ORDER BY level_tag
	`
	err := r.selectIn(ctx, &stats, query,
		now.UTC(), spaced_repetition.MasteredRepetitions, spaced_repetition.MasteredInterval, levels)
	if err != nil {
		return nil, fmt.Errorf("failed to get level statistics: %w", err)
	}
	return stats, nil
}

// Save implements session.ReviewWriter
func (r *ItemRepository) Save(ctx context.Context, item models.LearningItem) error {
	return writer{r.db}.Save(ctx, item)
}

// AppendEvent implements session.ReviewWriter
func (r *ItemRepository) AppendEvent(ctx context.Context, event models.ReviewEvent) error {
	return writer{r.db}.AppendEvent(ctx, event)
}

// SaveSession implements session.ReviewWriter
func (r *ItemRepository) SaveSession(ctx context.Context, s models.SessionState) error {
	return writer{r.db}.SaveSession(ctx, s)
}

// WithinTx runs fn against a transaction, committing only if fn succeeds.
func (r *ItemRepository) WithinTx(ctx context.Context, fn func(w session.ReviewWriter) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(writer{tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
