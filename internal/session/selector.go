package session

import (
	"context"
	"sort"

	"github.com/example/wordsrs/internal/clock"
	"github.com/example/wordsrs/internal/spaced_repetition"
	"github.com/example/wordsrs/pkg/models"
)

// DefaultJitter is the free-tier ranking jitter applied when none is configured.
const DefaultJitter = 10

// Selector picks the items that enter a bounded learning session.
type Selector struct {
	items  ItemReader
	clock  clock.Clock
	rng    clock.RNG
	jitter int
}

// NewSelector creates a Selector. jitter < 0 disables free-tier jitter.
func NewSelector(items ItemReader, clk clock.Clock, rng clock.RNG, jitter int) *Selector {
	return &Selector{items: items, clock: clk, rng: rng, jitter: max(jitter, 0)}
}

// SelectSession returns at most limit items for a session on the given tier.
//
// Premium sessions take due items first (earliest due first, items reviewed
// but never scheduled ahead of all) and top up with never-seen items in
// insertion order. Free sessions rank every eligible item
// by Score, over-fetch 2*limit candidates and sample limit of them. In both
// branches the final order is shuffled. An empty result is not an error.
func (s *Selector) SelectSession(ctx context.Context, tier models.AccessTier, levels []int, limit int) ([]models.LearningItem, error) {
	if limit <= 0 || len(levels) == 0 {
		return []models.LearningItem{}, nil
	}

	var (
		selected []models.LearningItem
		err      error
	)
	if tier.IsPremium() {
		selected, err = s.selectPremium(ctx, levels, limit)
	} else {
		selected, err = s.selectFree(ctx, levels, limit)
	}
	if err != nil {
		return nil, err
	}

	s.shuffle(selected)
	return selected, nil
}

func (s *Selector) selectPremium(ctx context.Context, levels []int, limit int) ([]models.LearningItem, error) {
	now := s.clock.Now()

	fetched, err := s.items.FetchByLevelsAndDue(ctx, levels, now)
	if err != nil {
		return nil, storeError("fetch due items", err)
	}
	due := make([]models.LearningItem, 0, len(fetched))
	for _, it := range fetched {
		if it.IsDue(now) || awaitingSchedule(it) {
			due = append(due, it)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i].NextReviewDue, due[j].NextReviewDue
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.Before(*b)
	})

	if len(due) >= limit {
		return append([]models.LearningItem(nil), due[:limit]...), nil
	}

	selected := make([]models.LearningItem, 0, limit)
	seen := make(map[int64]bool, limit)
	for _, it := range due {
		selected = append(selected, it)
		seen[it.ID] = true
	}

	unseen, err := s.items.FetchByLevelsUnseen(ctx, levels, limit-len(due))
	if err != nil {
		return nil, storeError("fetch unseen items", err)
	}
	for _, it := range unseen {
		if len(selected) == limit {
			break
		}
		if seen[it.ID] {
			continue
		}
		selected = append(selected, it)
		seen[it.ID] = true
	}
	return selected, nil
}

// awaitingSchedule reports an item that was reviewed but never scheduled,
// which happens on the free tier. Premium treats it as overdue.
func awaitingSchedule(it models.LearningItem) bool {
	return it.NextReviewDue == nil && it.TimesSeen > 0
}

func (s *Selector) selectFree(ctx context.Context, levels []int, limit int) ([]models.LearningItem, error) {
	all, err := s.items.FetchByLevels(ctx, levels)
	if err != nil {
		return nil, storeError("fetch items", err)
	}

	ranked := spaced_repetition.Rank(all, s.clock.Now(), s.jitter, s.rng)
	pool := ranked[:min(2*limit, len(ranked))]
	s.shuffle(pool)
	return pool[:min(limit, len(pool))], nil
}

func (s *Selector) shuffle(items []models.LearningItem) {
	if s.rng == nil {
		return
	}
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
