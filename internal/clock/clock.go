// Package clock provides the time and randomness sources injected into the
// scheduling core. Production code uses the wall clock and a wall-clock seeded
// generator; tests pin both.
package clock

import "time"

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// System is the wall clock, reported in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. Advance moves it forward.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time { return f.T }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
