package service

import (
	"sync"

	"github.com/google/uuid"
)

// userLocks serializes engine invocations per user. Two concurrent
// triggers for the same user would otherwise both read the same
// "before" state and create duplicate notes or tasks; cross-user
// invocations share no mutable state and proceed in parallel.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]*userLock)}
}

// Lock acquires the per-user mutex and returns the release function.
// Entries are reference counted and removed once unused, so the map
// does not grow with the number of users ever seen.
func (l *userLocks) Lock(userID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// sharedUserLocks is the process-wide lock table. All three services
// use it so that a mining pass and a generation pass for one user never
// interleave either.
var sharedUserLocks = newUserLocks()
