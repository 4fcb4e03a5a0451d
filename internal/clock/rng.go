package clock

import (
	"math/rand"
	"sync"
	"time"
)

// RNG is the only source of randomness the core uses.
// *rand.Rand satisfies it directly.
type RNG interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewRNG returns a generator seeded with seed. A zero seed means wall clock.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// LockedRNG serialises access to an RNG so one generator can back services
// shared between goroutines.
type LockedRNG struct {
	mu  sync.Mutex
	rng RNG
}

// NewLockedRNG wraps rng with a mutex.
func NewLockedRNG(rng RNG) *LockedRNG {
	return &LockedRNG{rng: rng}
}

func (l *LockedRNG) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

func (l *LockedRNG) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng.Shuffle(n, swap)
}

// Uniform draws a float in [lo, hi) from rng.
func Uniform(rng RNG, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
