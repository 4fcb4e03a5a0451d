package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/wordsrs/internal/clock"
	"github.com/example/wordsrs/internal/logger"
	"github.com/example/wordsrs/internal/spaced_repetition"
	"github.com/example/wordsrs/pkg/models"
)

// Plan is a started session and the items selected for it.
type Plan struct {
	Session *models.SessionState  `json:"session,omitempty"`
	Items   []models.LearningItem `json:"items"`
}

// Empty reports whether no items were available. No session is created then.
func (p Plan) Empty() bool {
	return len(p.Items) == 0
}

// Service runs learning sessions against a repository, choosing the
// scheduling branch from the entitlement oracle.
type Service struct {
	repo     Repository
	oracle   Entitlement
	selector *Selector
	recorder *Recorder
	clock    clock.Clock
	log      *logger.Logger
}

// Deps are the collaborators of a Service.
type Deps struct {
	Repo       Repository
	Oracle     Entitlement
	Calculator *spaced_repetition.Calculator
	Clock      clock.Clock
	RNG        clock.RNG
	Logger     *logger.Logger
	Jitter     int
}

// NewService wires a Service.
func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:     d.Repo,
		oracle:   d.Oracle,
		selector: NewSelector(d.Repo, d.Clock, d.RNG, d.Jitter),
		recorder: NewRecorder(d.Repo, d.Calculator, d.Clock, d.RNG),
		clock:    d.Clock,
		log:      log.With("component", "session"),
	}
}

func (s *Service) tier() models.AccessTier {
	return models.TierFor(s.oracle != nil && s.oracle.IsPremium())
}

// StartSession selects up to goal items from levels and opens a session for
// them. When nothing is eligible the returned Plan is empty and no session is
// stored.
func (s *Service) StartSession(ctx context.Context, levels []int, goal int) (Plan, error) {
	tier := s.tier()

	items, err := s.selector.SelectSession(ctx, tier, levels, goal)
	if err != nil {
		return Plan{}, err
	}
	if len(items) == 0 {
		s.log.Info("no items available for session", "levels", levels, "tier", tier)
		return Plan{Items: items}, nil
	}

	sess := models.SessionState{
		ID:                uuid.NewString(),
		StartedAt:         s.clock.Now(),
		Goal:              goal,
		AccessTierAtStart: tier,
	}
	if err := s.repo.SaveSession(ctx, sess); err != nil {
		return Plan{}, storeError("create session", err)
	}

	s.log.Info("session started", "session_id", sess.ID, "tier", tier, "items", len(items), "goal", goal)
	return Plan{Session: &sess, Items: items}, nil
}

// Review records an answer given inside a session. The session's tier at
// start decides the scheduling branch while it is open.
func (s *Service) Review(ctx context.Context, sessionID string, itemID int64, wasCorrect bool, responseTime *time.Duration) (Review, error) {
	if sessionID == "" {
		return Review{}, fmt.Errorf("%w: empty session id", ErrInvalidInput)
	}
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Review{}, storeError("load session", err)
	}

	tier := s.tier()
	if sess.IsOpen() {
		tier = sess.AccessTierAtStart
	}
	return s.review(ctx, tier, itemID, wasCorrect, responseTime, &sess)
}

// ReviewItem records an answer given outside any session.
func (s *Service) ReviewItem(ctx context.Context, itemID int64, wasCorrect bool, responseTime *time.Duration) (Review, error) {
	return s.review(ctx, s.tier(), itemID, wasCorrect, responseTime, nil)
}

func (s *Service) review(ctx context.Context, tier models.AccessTier, itemID int64, wasCorrect bool, responseTime *time.Duration, sess *models.SessionState) (Review, error) {
	if itemID <= 0 {
		return Review{}, fmt.Errorf("%w: item id %d", ErrInvalidInput, itemID)
	}
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return Review{}, storeError("load item", err)
	}

	rev, err := s.recorder.RecordReview(ctx, tier, item, wasCorrect, responseTime, sess)
	if err != nil {
		s.log.Error("review not recorded", "item_id", itemID, "error", err)
		return Review{}, err
	}

	s.log.Debug("review recorded",
		"item_id", itemID,
		"tier", tier,
		"quality", rev.Event.Quality,
		"interval", rev.Item.Interval,
	)
	if rev.Session != nil && !rev.Session.IsOpen() {
		s.log.Info("session completed", "session_id", rev.Session.ID,
			"reviewed", rev.Session.WordsReviewed, "correct", rev.Session.CorrectCount)
	}
	return rev, nil
}

// EndSession closes a session. Ending a closed session is a no-op.
func (s *Service) EndSession(ctx context.Context, sessionID string) (models.SessionState, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return models.SessionState{}, storeError("load session", err)
	}
	if !sess.IsOpen() {
		return sess, nil
	}

	closed := sess
	closed.Close(s.clock.Now())
	if err := s.repo.SaveSession(ctx, closed); err != nil {
		return models.SessionState{}, storeError("close session", err)
	}
	s.log.Info("session ended", "session_id", closed.ID, "reviewed", closed.WordsReviewed)
	return closed, nil
}

// SweepAbandoned closes open sessions started more than olderThan ago and
// returns how many were closed. olderThan <= 0 disables the sweep.
func (s *Service) SweepAbandoned(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	open, err := s.repo.ListOpenSessions(ctx)
	if err != nil {
		return 0, storeError("list open sessions", err)
	}

	now := s.clock.Now()
	cutoff := now.Add(-olderThan)
	closed := 0
	for _, sess := range open {
		if !sess.StartedAt.Before(cutoff) {
			continue
		}
		sess.Close(now)
		if err := s.repo.SaveSession(ctx, sess); err != nil {
			return closed, storeError("close abandoned session", err)
		}
		closed++
		s.log.Info("abandoned session closed", "session_id", sess.ID, "started_at", sess.StartedAt)
	}
	return closed, nil
}

// ResetProgress restores every item of the given levels to creation defaults.
func (s *Service) ResetProgress(ctx context.Context, levels []int) (int64, error) {
	if len(levels) == 0 {
		return 0, fmt.Errorf("%w: no levels to reset", ErrInvalidInput)
	}
	n, err := s.repo.ResetProgress(ctx, levels)
	if err != nil {
		return 0, storeError("reset progress", err)
	}
	s.log.Info("progress reset", "levels", levels, "items", n)
	return n, nil
}

// Stats returns per-level statistics.
func (s *Service) Stats(ctx context.Context, levels []int) ([]models.LevelStats, error) {
	stats, err := s.repo.LevelStats(ctx, levels, s.clock.Now())
	if err != nil {
		return nil, storeError("level stats", err)
	}
	return stats, nil
}
