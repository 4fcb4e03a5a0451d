package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dur(d time.Duration) *time.Duration { return &d }

func TestBinaryQuality(t *testing.T) {
	p := BinaryQuality{}
	assert.Equal(t, QualityPerfect, p.Quality(true, nil))
	assert.Equal(t, QualityPerfect, p.Quality(true, dur(time.Minute)))
	assert.Equal(t, QualityFailed, p.Quality(false, dur(time.Second)))
}

func TestTimedQuality(t *testing.T) {
	tests := []struct {
		name    string
		correct bool
		rt      *time.Duration
		want    Quality
	}{
		{"fast", true, dur(1500 * time.Millisecond), QualityPerfect},
		{"two seconds", true, dur(2 * time.Second), QualityCorrectHesitation},
		{"slowish", true, dur(4999 * time.Millisecond), QualityCorrectHesitation},
		{"slow", true, dur(9 * time.Second), QualityCorrectDifficult},
		{"very slow", true, dur(10 * time.Second), QualityIncorrectFamiliar},
		{"no timing", true, nil, QualityCorrectHesitation},
		{"incorrect fast", false, dur(time.Second), QualityFailed},
		{"incorrect untimed", false, nil, QualityFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimedQuality{}.Quality(tt.correct, tt.rt))
		})
	}
}

func TestClampQuality(t *testing.T) {
	assert.Equal(t, QualityFailed, ClampQuality(0))
	assert.Equal(t, QualityFailed, ClampQuality(-4))
	assert.Equal(t, QualityCorrectDifficult, ClampQuality(3))
	assert.Equal(t, QualityPerfect, ClampQuality(6))
}
