package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestNewLearningItemDefaults(t *testing.T) {
	it := NewLearningItem("casa", "house", 2)

	assert.True(t, it.IsNew())
	assert.Equal(t, DefaultEaseFactor, it.EaseFactor)
	assert.Zero(t, it.Interval)
	assert.Zero(t, it.Repetitions)
	assert.Nil(t, it.LastSeenAt)
	assert.Nil(t, it.NextReviewDue)
	assert.False(t, it.IsDue(t0))
}

func TestIsDue(t *testing.T) {
	it := NewLearningItem("casa", "house", 1)
	due := t0
	it.NextReviewDue = &due

	assert.True(t, it.IsDue(t0))
	assert.True(t, it.IsDue(t0.Add(time.Second)))
	assert.False(t, it.IsDue(t0.Add(-time.Second)))
}

func TestResetProgress(t *testing.T) {
	seen := t0
	it := LearningItem{
		ID:             7,
		Term:           "casa",
		Translation:    "house",
		Pronunciation:  "ˈka.sa",
		LevelTag:       3,
		TimesSeen:      9,
		TimesCorrect:   6,
		TimesIncorrect: 3,
		LastSeenAt:     &seen,
		EaseFactor:     1.7,
		Interval:       12,
		Repetitions:    4,
		NextReviewDue:  &seen,
	}

	reset := it.ResetProgress()
	want := NewLearningItem("casa", "house", 3)
	want.ID = 7
	want.Pronunciation = "ˈka.sa"
	assert.Equal(t, want, reset)
	assert.Equal(t, reset, reset.ResetProgress())

	// receiver is a copy
	assert.Equal(t, 9, it.TimesSeen)
}

func TestSessionClose(t *testing.T) {
	s := SessionState{ID: "a", StartedAt: t0, Goal: 3}
	require.True(t, s.IsOpen())

	s.Close(t0.Add(time.Minute))
	assert.False(t, s.IsOpen())
	assert.Equal(t, t0.Add(time.Minute), *s.EndedAt)

	s.Close(t0.Add(time.Hour))
	assert.Equal(t, t0.Add(time.Minute), *s.EndedAt)
}

func TestParseAccessTier(t *testing.T) {
	tests := []struct {
		in      string
		want    AccessTier
		wantErr bool
	}{
		{"free", TierFree, false},
		{"Premium", TierPremium, false},
		{" premium ", TierPremium, false},
		{"gold", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAccessTier(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, TierPremium, TierFor(true))
	assert.Equal(t, TierFree, TierFor(false))
}
