package services

import "sync"

// playerLocks serializes evaluations per player. Entries are dropped once no
// goroutine holds or waits on them.
type playerLocks struct {
	mu    sync.Mutex
	locks map[string]*playerLock
}

type playerLock struct {
	mu   sync.Mutex
	refs int
}

func newPlayerLocks() *playerLocks {
	return &playerLocks{locks: make(map[string]*playerLock)}
}

// Lock blocks until id is free and returns the matching unlock.
func (l *playerLocks) Lock(id string) func() {
	l.mu.Lock()
	pl, ok := l.locks[id]
	if !ok {
		pl = &playerLock{}
		l.locks[id] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *playerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
