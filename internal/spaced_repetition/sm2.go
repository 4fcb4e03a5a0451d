package spaced_repetition

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/example/wordsrs/internal/clock"
	"github.com/example/wordsrs/pkg/models"
)

// ErrInvalidConfig is returned by NewCalculator for out-of-range settings.
var ErrInvalidConfig = errors.New("spaced_repetition: invalid calculator config")

// Quality is the 1-5 recall rating that drives interval updates
type Quality int

const (
	// Failed to recall
	QualityFailed Quality = 1
	// Incorrect, but the answer felt familiar
	QualityIncorrectFamiliar Quality = 2
	// Correct response but required significant effort
	QualityCorrectDifficult Quality = 3
	// Correct response after some hesitation
	QualityCorrectHesitation Quality = 4
	// Perfect response with no hesitation
	QualityPerfect Quality = 5
)

// PassThreshold is the lowest quality counted as a successful recall.
const PassThreshold = QualityCorrectDifficult

// ClampQuality forces q into [1,5]. Out-of-range ratings are clamped, not rejected.
func ClampQuality(q int) Quality {
	return Quality(min(max(q, int(QualityFailed)), int(QualityPerfect)))
}

// Config tunes the SM-2 variant. Zero fields take the defaults below.
type Config struct {
	EasyBonus      float64 // quality 5 multiplier, default 1.3
	HardPenalty    float64 // quality 3 multiplier, default 0.8
	SecondInterval int     // interval after the second success, default 6
	FuzzMin        float64 // default 0.85
	FuzzMax        float64 // default 1.15
	FuzzThreshold  float64 // intervals at or below this are not fuzzed, default 2
	MaxInterval    int     // 0 = unbounded
}

// DefaultConfig returns the default SM-2 settings
func DefaultConfig() Config {
	return Config{
		EasyBonus:      1.3,
		HardPenalty:    0.8,
		SecondInterval: 6,
		FuzzMin:        0.85,
		FuzzMax:        1.15,
		FuzzThreshold:  2,
	}
}

// Schedule is the scheduling state produced by one Advance call.
type Schedule struct {
	Repetitions   int
	EaseFactor    float64
	Interval      int
	NextReviewDue time.Time
}

// Calculator implements the SuperMemo-2 algorithm with quality-tier
// adjustments and interval fuzzing. It holds no mutable state and is safe
// for concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a Calculator. Zero-value fields are filled with
// defaults; invalid values return an error.
func NewCalculator(cfg Config) (*Calculator, error) {
	def := DefaultConfig()
	if cfg.EasyBonus == 0 {
		cfg.EasyBonus = def.EasyBonus
	}
	if cfg.HardPenalty == 0 {
		cfg.HardPenalty = def.HardPenalty
	}
	if cfg.SecondInterval == 0 {
		cfg.SecondInterval = def.SecondInterval
	}
	if cfg.FuzzMin == 0 && cfg.FuzzMax == 0 {
		cfg.FuzzMin, cfg.FuzzMax = def.FuzzMin, def.FuzzMax
	}
	if cfg.FuzzThreshold == 0 {
		cfg.FuzzThreshold = def.FuzzThreshold
	}

	switch {
	case cfg.EasyBonus < 0 || cfg.HardPenalty < 0:
		return nil, fmt.Errorf("%w: multipliers must be positive", ErrInvalidConfig)
	case cfg.SecondInterval < 1:
		return nil, fmt.Errorf("%w: second interval %d must be at least 1", ErrInvalidConfig, cfg.SecondInterval)
	case cfg.FuzzMin <= 0 || cfg.FuzzMin > cfg.FuzzMax:
		return nil, fmt.Errorf("%w: fuzz range [%g, %g]", ErrInvalidConfig, cfg.FuzzMin, cfg.FuzzMax)
	case cfg.MaxInterval < 0:
		return nil, fmt.Errorf("%w: maximum interval %d must not be negative", ErrInvalidConfig, cfg.MaxInterval)
	}
	return &Calculator{cfg: cfg}, nil
}

// MustCalculator is NewCalculator for configs known to be valid.
func MustCalculator(cfg Config) *Calculator {
	c, err := NewCalculator(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns the effective configuration.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Advance computes the next scheduling state from a quality rating and the
// current state. Inputs are clamped rather than rejected; a nil rng disables
// fuzzing.
func (c *Calculator) Advance(quality, repetitions int, easeFactor float64, interval int, now time.Time, rng clock.RNG) Schedule {
	q := ClampQuality(quality)
	easeFactor = math.Max(easeFactor, models.MinEaseFactor)
	repetitions = max(repetitions, 0)
	interval = max(interval, 0)

	newEF := nextEaseFactor(easeFactor, q)

	var newReps int
	var ivl float64
	if q < PassThreshold {
		// Failed recall: full reset
		newReps = 0
		ivl = 1
	} else {
		newReps = repetitions + 1
		switch newReps {
		case 1:
			ivl = 1
		case 2:
			ivl = float64(c.cfg.SecondInterval)
		default:
			ivl = math.Round(float64(interval) * newEF)
		}

		switch q {
		case QualityPerfect:
			ivl *= c.cfg.EasyBonus
		case QualityCorrectDifficult:
			ivl *= c.cfg.HardPenalty
		}
	}

	ivl = c.fuzz(ivl, rng)

	days := max(1, int(math.Round(ivl)))
	if c.cfg.MaxInterval > 0 {
		days = min(days, c.cfg.MaxInterval)
	}

	return Schedule{
		Repetitions:   newReps,
		EaseFactor:    newEF,
		Interval:      days,
		NextReviewDue: now.AddDate(0, 0, days),
	}
}

// Apply returns a copy of item with its schedule fields overwritten by Advance.
func (c *Calculator) Apply(item models.LearningItem, quality int, now time.Time, rng clock.RNG) models.LearningItem {
	s := c.Advance(quality, item.Repetitions, item.EaseFactor, item.Interval, now, rng)
	item.Repetitions = s.Repetitions
	item.EaseFactor = s.EaseFactor
	item.Interval = s.Interval
	due := s.NextReviewDue
	item.NextReviewDue = &due
	return item
}

// fuzz spreads intervals so that items reviewed together do not all come due
// on the same day.
func (c *Calculator) fuzz(ivl float64, rng clock.RNG) float64 {
	if rng == nil || ivl <= c.cfg.FuzzThreshold {
		return ivl
	}
	return ivl * clock.Uniform(rng, c.cfg.FuzzMin, c.cfg.FuzzMax)
}

// nextEaseFactor applies the SM-2 ease update with the 1.3 floor.
// There is no upper bound.
func nextEaseFactor(ef float64, q Quality) float64 {
	var next float64
	if q >= PassThreshold {
		d := float64(QualityPerfect - q)
		next = ef + (0.1 - d*(0.08+d*0.02))
	} else {
		next = ef - 0.2
	}
	return math.Max(models.MinEaseFactor, next)
}

// Mastery thresholds
const (
	MasteredRepetitions = 5
	MasteredInterval    = 30 // days
)

// IsMastered determines if an item is considered "mastered":
// at least 5 consecutive successes and an interval of 30 days or more.
func IsMastered(item models.LearningItem) bool {
	return item.Repetitions >= MasteredRepetitions && item.Interval >= MasteredInterval
}
