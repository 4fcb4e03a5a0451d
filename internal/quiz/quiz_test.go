package quiz

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordsrs/pkg/models"
)

type staticSource struct {
	items []models.LearningItem
	err   error
}

func (s staticSource) FetchByLevels(_ context.Context, levels []int) ([]models.LearningItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.LearningItem
	for _, it := range s.items {
		for _, l := range levels {
			if it.LevelTag == l {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func item(id int64, term, translation string, level int) models.LearningItem {
	it := models.NewLearningItem(term, translation, level)
	it.ID = id
	return it
}

var pool = []models.LearningItem{
	item(1, "uno", "one", 1),
	item(2, "dos", "two", 1),
	item(3, "tres", "three", 1),
	item(4, "cuatro", "four", 1),
	item(5, "perro", "dog", 2),
	item(6, "gato", "cat", 2),
	item(7, "uno bis", "ONE", 1),
}

func TestBuildMultipleChoice(t *testing.T) {
	b := NewBuilder(staticSource{items: pool}, rand.New(rand.NewSource(4)))

	qs, err := b.Build(context.Background(), pool[:2], []int{1, 2}, DefaultChoices)
	require.NoError(t, err)
	require.Len(t, qs, 2)

	for i, q := range qs {
		assert.Equal(t, pool[i].ID, q.ItemID)
		assert.Equal(t, pool[i].Term, q.Prompt)
		require.Len(t, q.Options, DefaultChoices)
		assert.Equal(t, pool[i].Translation, q.Options[q.CorrectIndex])
		assert.True(t, q.Answer(q.CorrectIndex))

		seen := map[string]bool{}
		for _, o := range q.Options {
			assert.False(t, seen[o], "duplicate option %q", o)
			seen[o] = true
		}
	}
	assert.NotContains(t, qs[0].Options, "ONE", "case-insensitive duplicate of the answer")
}

func TestBuildPrefersSameLevel(t *testing.T) {
	b := NewBuilder(staticSource{items: pool}, nil)

	qs, err := b.Build(context.Background(), pool[4:5], []int{1, 2}, 2)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, []string{"cat", "dog"}, qs[0].Options)
	assert.Equal(t, 1, qs[0].CorrectIndex)
}

func TestBuildShortPool(t *testing.T) {
	b := NewBuilder(staticSource{items: pool[4:6]}, rand.New(rand.NewSource(1)))

	qs, err := b.Build(context.Background(), pool[4:5], []int{2}, 6)
	require.NoError(t, err)
	assert.Len(t, qs[0].Options, 2)
}

func TestBuildDeterministic(t *testing.T) {
	build := func() []Question {
		b := NewBuilder(staticSource{items: pool}, rand.New(rand.NewSource(9)))
		qs, err := b.Build(context.Background(), pool, []int{1, 2}, 3)
		require.NoError(t, err)
		return qs
	}
	assert.Equal(t, build(), build())
}

func TestBuildErrors(t *testing.T) {
	b := NewBuilder(staticSource{items: pool}, nil)
	_, err := b.Build(context.Background(), pool, []int{1}, 1)
	assert.Error(t, err)

	boom := errors.New("boom")
	b = NewBuilder(staticSource{err: boom}, nil)
	_, err = b.Build(context.Background(), pool, []int{1}, 4)
	assert.ErrorIs(t, err, boom)

	qs, err := b.Build(context.Background(), nil, []int{1}, 4)
	require.NoError(t, err)
	assert.Empty(t, qs)
}
