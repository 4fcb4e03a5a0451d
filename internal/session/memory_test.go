package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/wordsrs/internal/spaced_repetition"
	"github.com/example/wordsrs/pkg/models"
)

var errStoreDown = errors.New("store down")

// memRepo is an in-memory Repository used by the package tests.
type memRepo struct {
	mu       sync.Mutex
	items    []models.LearningItem
	events   []models.ReviewEvent
	sessions map[string]models.SessionState

	failFetch   error
	failSave    error
	failAppend  error
	failSession error
}

func newMemRepo(items ...models.LearningItem) *memRepo {
	r := &memRepo{sessions: map[string]models.SessionState{}}
	for i, it := range items {
		if it.ID == 0 {
			it.ID = int64(i + 1)
		}
		r.items = append(r.items, it)
	}
	return r
}

func inLevels(level int, levels []int) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}

func (r *memRepo) FetchByLevelsAndDue(_ context.Context, levels []int, now time.Time) ([]models.LearningItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFetch != nil {
		return nil, r.failFetch
	}
	var out []models.LearningItem
	for _, it := range r.items {
		if inLevels(it.LevelTag, levels) && (it.IsDue(now) || awaitingSchedule(it)) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].NextReviewDue, out[j].NextReviewDue
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.Before(*b)
	})
	return out, nil
}

func (r *memRepo) FetchByLevelsUnseen(_ context.Context, levels []int, limit int) ([]models.LearningItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFetch != nil {
		return nil, r.failFetch
	}
	var out []models.LearningItem
	for _, it := range r.items {
		if len(out) == limit {
			break
		}
		if inLevels(it.LevelTag, levels) && it.TimesSeen == 0 {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memRepo) FetchByLevels(_ context.Context, levels []int) ([]models.LearningItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFetch != nil {
		return nil, r.failFetch
	}
	var out []models.LearningItem
	for _, it := range r.items {
		if inLevels(it.LevelTag, levels) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memRepo) Save(_ context.Context, item models.LearningItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave != nil {
		return r.failSave
	}
	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = item
			return nil
		}
	}
	return fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
}

func (r *memRepo) AppendEvent(_ context.Context, event models.ReviewEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAppend != nil {
		return r.failAppend
	}
	event.ID = int64(len(r.events) + 1)
	r.events = append(r.events, event)
	return nil
}

func (r *memRepo) SaveSession(_ context.Context, s models.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSession != nil {
		return r.failSession
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *memRepo) GetItem(_ context.Context, id int64) (models.LearningItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.LearningItem{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
}

func (r *memRepo) GetSession(_ context.Context, id string) (models.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return models.SessionState{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s, nil
}

func (r *memRepo) ListOpenSessions(_ context.Context) ([]models.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SessionState
	for _, s := range r.sessions {
		if s.IsOpen() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memRepo) ResetProgress(_ context.Context, levels []int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i, it := range r.items {
		if inLevels(it.LevelTag, levels) {
			r.items[i] = it.ResetProgress()
			n++
		}
	}
	return n, nil
}

func (r *memRepo) LevelStats(_ context.Context, levels []int, now time.Time) ([]models.LevelStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byLevel := map[int]*models.LevelStats{}
	for _, it := range r.items {
		if !inLevels(it.LevelTag, levels) {
			continue
		}
		st, ok := byLevel[it.LevelTag]
		if !ok {
			st = &models.LevelStats{LevelTag: it.LevelTag}
			byLevel[it.LevelTag] = st
		}
		st.Total++
		if it.IsNew() {
			st.Unseen++
		}
		if it.IsDue(now) || awaitingSchedule(it) {
			st.Due++
		}
		if spaced_repetition.IsMastered(it) {
			st.Mastered++
		}
	}
	var out []models.LevelStats
	for _, l := range levels {
		if st, ok := byLevel[l]; ok {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (r *memRepo) item(id int64) models.LearningItem {
	it, _ := r.GetItem(context.Background(), id)
	return it
}

// txRepo adds all-or-nothing writes on top of memRepo.
type txRepo struct {
	*memRepo
	txCalls int
}

func (r *txRepo) WithinTx(ctx context.Context, fn func(w ReviewWriter) error) error {
	r.txCalls++
	r.mu.Lock()
	items := append([]models.LearningItem(nil), r.items...)
	events := append([]models.ReviewEvent(nil), r.events...)
	sessions := make(map[string]models.SessionState, len(r.sessions))
	for k, v := range r.sessions {
		sessions[k] = v
	}
	r.mu.Unlock()

	if err := fn(r.memRepo); err != nil {
		r.mu.Lock()
		r.items, r.events, r.sessions = items, events, sessions
		r.mu.Unlock()
		return err
	}
	return nil
}
