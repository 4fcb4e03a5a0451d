// Package quiz turns session items into multiple-choice questions.
package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/wordsrs/internal/clock"
	"github.com/example/wordsrs/pkg/models"
)

// DefaultChoices is the number of options per question, the answer included.
const DefaultChoices = 4

// Question is a single multiple-choice question
type Question struct {
	ItemID       int64    `json:"item_id"`
	Prompt       string   `json:"prompt"`        // The term being tested
	Options      []string `json:"options"`       // Possible translations
	CorrectIndex int      `json:"correct_index"` // Index of the right translation in Options
}

// Answer reports whether choice is the right option.
func (q Question) Answer(choice int) bool {
	return choice == q.CorrectIndex
}

// ItemSource provides the pool distractors are drawn from.
type ItemSource interface {
	FetchByLevels(ctx context.Context, levels []int) ([]models.LearningItem, error)
}

// Builder creates questions. A nil rng keeps options in pool order with the
// answer last.
type Builder struct {
	items ItemSource
	rng   clock.RNG
}

// NewBuilder creates a new quiz builder
func NewBuilder(items ItemSource, rng clock.RNG) *Builder {
	return &Builder{items: items, rng: rng}
}

// Build returns one question per item with up to choices options each.
// Distractors come from the item's own level first, then from the other
// levels in pool. Questions get fewer options when the pool runs short.
func (b *Builder) Build(ctx context.Context, items []models.LearningItem, pool []int, choices int) ([]Question, error) {
	if choices < 2 {
		return nil, fmt.Errorf("quiz needs at least 2 choices, got %d", choices)
	}
	questions := make([]Question, 0, len(items))
	if len(items) == 0 {
		return questions, nil
	}

	candidates, err := b.items.FetchByLevels(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to get distractors: %w", err)
	}

	for _, item := range items {
		options := append(b.distractors(item, candidates, choices-1), item.Translation)
		correctIndex := len(options) - 1

		if b.rng != nil {
			b.rng.Shuffle(len(options), func(i, j int) {
				if i == correctIndex {
					correctIndex = j
				} else if j == correctIndex {
					correctIndex = i
				}
				options[i], options[j] = options[j], options[i]
			})
		}

		questions = append(questions, Question{
			ItemID:       item.ID,
			Prompt:       item.Term,
			Options:      options,
			CorrectIndex: correctIndex,
		})
	}
	return questions, nil
}

// distractors picks up to count wrong translations for item.
func (b *Builder) distractors(item models.LearningItem, candidates []models.LearningItem, count int) []string {
	var sameLevel, otherLevel []string
	for _, c := range candidates {
		if c.ID == item.ID {
			continue
		}
		if c.LevelTag == item.LevelTag {
			sameLevel = append(sameLevel, c.Translation)
		} else {
			otherLevel = append(otherLevel, c.Translation)
		}
	}
	b.shuffle(sameLevel)
	b.shuffle(otherLevel)

	used := map[string]bool{strings.ToLower(strings.TrimSpace(item.Translation)): true}
	options := make([]string, 0, count)
	for _, t := range append(sameLevel, otherLevel...) {
		if len(options) == count {
			break
		}
		key := strings.ToLower(strings.TrimSpace(t))
		if used[key] {
			continue
		}
		used[key] = true
		options = append(options, t)
	}
	return options
}

func (b *Builder) shuffle(s []string) {
	if b.rng == nil {
		return
	}
	b.rng.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}
