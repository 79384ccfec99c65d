package orders

import (
	"sync"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// BaseLock serializes order admission and cancellation per base. The
// conflict check and the row insert must be indivisible with respect
// to other admissions for the same base; the conditional updates in
// the store keep cancel/sweep races safe even without the lock, but
// the single construction slot needs mutual exclusion above the store
// because it spans two reads and a write.
type BaseLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBaseLock creates an empty lock table
func NewBaseLock() *BaseLock {
	return &BaseLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for one base, creating it on first use.
// Returns the unlock function.
func (l *BaseLock) Lock(coord shared.Coordinate) func() {
	key := coord.String()

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
