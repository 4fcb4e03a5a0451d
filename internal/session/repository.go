package session

import (
	"context"
	"time"

	"github.com/example/wordsrs/pkg/models"
)

// ItemReader is the query side of the item store used by the Selector.
type ItemReader interface {
	// FetchByLevelsAndDue returns scheduled items with NextReviewDue <= now,
	// earliest due first. Items seen but never scheduled (nil NextReviewDue,
	// TimesSeen > 0) are due as well and come before all others.
	FetchByLevelsAndDue(ctx context.Context, levels []int, now time.Time) ([]models.LearningItem, error)

	// FetchByLevelsUnseen returns up to limit never-reviewed items in
	// insertion order.
	FetchByLevelsUnseen(ctx context.Context, levels []int, limit int) ([]models.LearningItem, error)

	// FetchByLevels returns every item of the given levels.
	FetchByLevels(ctx context.Context, levels []int) ([]models.LearningItem, error)
}

// ReviewWriter persists the outcome of one review.
type ReviewWriter interface {
	Save(ctx context.Context, item models.LearningItem) error
	AppendEvent(ctx context.Context, event models.ReviewEvent) error
	SaveSession(ctx context.Context, s models.SessionState) error
}

// Transactor is implemented by stores that can apply several writes
// atomically. The Recorder uses it when available.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(w ReviewWriter) error) error
}

// Repository is the full store contract consumed by Service.
// Lookups return an error matching ErrNotFound for unknown ids.
type Repository interface {
	ItemReader
	ReviewWriter

	GetItem(ctx context.Context, id int64) (models.LearningItem, error)
	GetSession(ctx context.Context, id string) (models.SessionState, error)
	ListOpenSessions(ctx context.Context) ([]models.SessionState, error)

	// ResetProgress restores every item of the given levels to creation
	// defaults and returns how many rows were touched.
	ResetProgress(ctx context.Context, levels []int) (int64, error)
	LevelStats(ctx context.Context, levels []int, now time.Time) ([]models.LevelStats, error)
}

// Entitlement is the single boolean gate choosing the scheduling branch.
type Entitlement interface {
	IsPremium() bool
}
