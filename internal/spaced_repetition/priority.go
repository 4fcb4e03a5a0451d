package spaced_repetition

import (
	"math"
	"sort"
	"time"

	"github.com/example/wordsrs/internal/clock"
	"github.com/example/wordsrs/pkg/models"
)

const (
	correctWeight  = 20
	recencyPenalty = 50
)

// Score ranks an item for the free tier; lower means reviewed sooner.
// Known words (many correct answers) and words seen within the last day are
// pushed back. Never-seen items carry no recency penalty and get no bonus.
func Score(item models.LearningItem, now time.Time) int {
	score := item.TimesCorrect * correctWeight
	if item.LastSeenAt != nil && now.Sub(*item.LastSeenAt) < 24*time.Hour {
		score += recencyPenalty
	}
	return score
}

// Rank returns a copy of items sorted by ascending score. When jitter > 0
// and rng is non-nil every score is perturbed by a uniform integer in
// [-jitter, +jitter] before sorting. Ties keep input order.
func Rank(items []models.LearningItem, now time.Time, jitter int, rng clock.RNG) []models.LearningItem {
	type scored struct {
		item  models.LearningItem
		score int
	}

	ranked := make([]scored, len(items))
	for i, it := range items {
		s := Score(it, now)
		if jitter > 0 && rng != nil {
			s += int(math.Floor(rng.Float64()*float64(2*jitter+1))) - jitter
		}
		ranked[i] = scored{item: it, score: s}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	out := make([]models.LearningItem, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out
}
