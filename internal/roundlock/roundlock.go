// Package roundlock serializes round work per tournament.
//
// Pairing must not run while results for the same tournament are being
// recorded, or it would read a half-written standings snapshot. Lockers in
// this package are non-blocking: Acquire fails with ErrLocked instead of
// waiting.
package roundlock

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrLocked is returned when another holder owns the tournament.
	ErrLocked = errors.New("tournament round is locked")

	// ErrNotHeld is returned by a release whose lock expired or was taken over.
	ErrNotHeld = errors.New("round lock no longer held")
)

// Release gives the lock back.
type Release func(ctx context.Context) error

// Locker hands out one lock per tournament.
type Locker interface {
	Acquire(ctx context.Context, tournamentID int64) (Release, error)
}

// Local is an in-process Locker, enough when a single process owns the store.
type Local struct {
	mu   sync.Mutex
	held map[int64]bool
}

// NewLocal creates an empty in-process locker.
func NewLocal() *Local {
	return &Local{held: make(map[int64]bool)}
}

// Acquire takes the lock for tournamentID or returns ErrLocked.
func (l *Local) Acquire(_ context.Context, tournamentID int64) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[tournamentID] {
		return nil, ErrLocked
	}
	l.held[tournamentID] = true

	var once sync.Once
	return func(context.Context) error {
		err := ErrNotHeld
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, tournamentID)
			l.mu.Unlock()
			err = nil
		})
		return err
	}, nil
}
