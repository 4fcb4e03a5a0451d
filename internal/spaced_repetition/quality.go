package spaced_repetition

import "time"

// QualityPolicy derives a recall quality from a review outcome.
type QualityPolicy interface {
	Quality(wasCorrect bool, responseTime *time.Duration) Quality
}

// BinaryQuality maps correct to 5 and incorrect to 1. Response time is ignored.
type BinaryQuality struct{}

func (BinaryQuality) Quality(wasCorrect bool, _ *time.Duration) Quality {
	if wasCorrect {
		return QualityPerfect
	}
	return QualityFailed
}

// TimedQuality buckets correct answers by how fast they came.
// A correct answer without a recorded response time counts as hesitation (4).
type TimedQuality struct{}

func (TimedQuality) Quality(wasCorrect bool, responseTime *time.Duration) Quality {
	if !wasCorrect {
		return QualityFailed
	}
	if responseTime == nil {
		return QualityCorrectHesitation
	}
	switch rt := *responseTime; {
	case rt < 2*time.Second:
		return QualityPerfect
	case rt < 5*time.Second:
		return QualityCorrectHesitation
	case rt < 10*time.Second:
		return QualityCorrectDifficult
	default:
		return QualityIncorrectFamiliar
	}
}
