package session

import (
	"context"
	"fmt"
	"time"

	"github.com/example/wordsrs/internal/clock"
	"github.com/example/wordsrs/internal/spaced_repetition"
	"github.com/example/wordsrs/pkg/models"
)

// Review is the persisted outcome of one RecordReview call.
type Review struct {
	Item  models.LearningItem `json:"item"`
	Event models.ReviewEvent  `json:"event"`
	// Session is the updated session, or nil when no open session was involved.
	Session *models.SessionState `json:"session,omitempty"`
}

// Recorder applies review outcomes to items and sessions.
type Recorder struct {
	store    ReviewWriter
	calc     *spaced_repetition.Calculator
	clock    clock.Clock
	rng      clock.RNG
	policies map[models.AccessTier]spaced_repetition.QualityPolicy
}

// NewRecorder creates a Recorder. Premium reviews derive quality from
// response time; free reviews use the binary mapping.
func NewRecorder(store ReviewWriter, calc *spaced_repetition.Calculator, clk clock.Clock, rng clock.RNG) *Recorder {
	return &Recorder{
		store: store,
		calc:  calc,
		clock: clk,
		rng:   rng,
		policies: map[models.AccessTier]spaced_repetition.QualityPolicy{
			models.TierFree:    spaced_repetition.BinaryQuality{},
			models.TierPremium: spaced_repetition.TimedQuality{},
		},
	}
}

// QualityFor returns the quality the tier's policy assigns to an outcome.
func (r *Recorder) QualityFor(tier models.AccessTier, wasCorrect bool, responseTime *time.Duration) spaced_repetition.Quality {
	policy, ok := r.policies[tier]
	if !ok {
		policy = r.policies[models.TierFree]
	}
	return policy.Quality(wasCorrect, responseTime)
}

// RecordReview applies one review to item (and to sess when it is open).
//
// Counters are always updated; the SM-2 schedule is only recomputed on the
// premium tier. The caller's values are never modified: updated copies are
// returned once every write has succeeded. A closed session is left as is.
func (r *Recorder) RecordReview(ctx context.Context, tier models.AccessTier, item models.LearningItem, wasCorrect bool, responseTime *time.Duration, sess *models.SessionState) (Review, error) {
	now := r.clock.Now()
	quality := r.QualityFor(tier, wasCorrect, responseTime)

	updated := item
	updated.TimesSeen++
	seenAt := now
	updated.LastSeenAt = &seenAt
	if wasCorrect {
		updated.TimesCorrect++
	} else {
		updated.TimesIncorrect++
	}
	if tier.IsPremium() {
		updated = r.calc.Apply(updated, int(quality), now, r.rng)
	}

	event := models.ReviewEvent{
		ItemID:     item.ID,
		Timestamp:  now,
		Quality:    int(quality),
		WasCorrect: wasCorrect,
	}
	if responseTime != nil {
		ms := responseTime.Milliseconds()
		event.ResponseTimeMs = &ms
	}

	var updatedSess *models.SessionState
	if sess != nil && sess.IsOpen() {
		s := *sess
		s.WordsReviewed++
		if wasCorrect {
			s.CorrectCount++
		} else {
			s.IncorrectCount++
		}
		if s.Goal > 0 && s.WordsReviewed >= s.Goal {
			s.Close(now)
		}
		updatedSess = &s
		id := s.ID
		event.SessionID = &id
	}

	write := func(w ReviewWriter) error {
		if err := w.Save(ctx, updated); err != nil {
			return fmt.Errorf("failed to save item: %w", err)
		}
		if err := w.AppendEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to append review event: %w", err)
		}
		if updatedSess != nil {
			if err := w.SaveSession(ctx, *updatedSess); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
		}
		return nil
	}

	var err error
	if tx, ok := r.store.(Transactor); ok {
		err = tx.WithinTx(ctx, write)
	} else {
		err = write(r.store)
	}
	if err != nil {
		return Review{}, storeError(fmt.Sprintf("record review of item %d", item.ID), err)
	}

	return Review{Item: updated, Event: event, Session: updatedSess}, nil
}
