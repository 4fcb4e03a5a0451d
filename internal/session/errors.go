package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for the session package.
// Use errors.Is to check: errors.Is(err, session.ErrRepositoryUnavailable)
//
// An empty eligible pool is not an error: selection returns an empty slice
// and StartSession returns a Plan for which Empty() is true.
var (
	ErrInvalidInput          = errors.New("session: invalid input")
	ErrRepositoryUnavailable = errors.New("session: repository unavailable")
	ErrNotFound              = errors.New("session: not found")
)

// storeError classifies a repository failure. Not-found errors keep their
// identity; everything else is reported as the store being unavailable.
func storeError(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrRepositoryUnavailable, op, err)
}
