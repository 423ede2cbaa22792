package service

import (
	"sync"

	"github.com/revival/clans/internal/model"
)

// clanLocks is a keyed mutex registry. Every mutating operation on a clan,
// and every read-then-mutate sequence, holds that clan's lock for its whole
// check-then-commit span. Locks are created lazily and removed on disband.
type clanLocks struct {
	mu    sync.Mutex
	locks map[model.ClanID]*sync.Mutex
}

func newClanLocks() *clanLocks {
	return &clanLocks{locks: make(map[model.ClanID]*sync.Mutex)}
}

// lock acquires the mutex for id and returns its release func. If the
// entry was forgotten while we were blocked on it (the clan was disbanded),
// the stale mutex is dropped and acquisition retries against the current
// entry, so at most one goroutine ever holds the lock for a given id.
func (l *clanLocks) lock(id model.ClanID) func() {
	for {
		l.mu.Lock()
		m, ok := l.locks[id]
		if !ok {
			m = &sync.Mutex{}
			l.locks[id] = m
		}
		l.mu.Unlock()

		m.Lock()

		l.mu.Lock()
		current := l.locks[id]
		l.mu.Unlock()
		if current == m {
			return m.Unlock
		}
		m.Unlock()
	}
}

// forget removes the lock entry for a disbanded clan. The caller still
// holds the mutex it acquired through lock; releasing it afterwards is
// harmless since nothing can observe the stale entry.
func (l *clanLocks) forget(id model.ClanID) {
	l.mu.Lock()
	delete(l.locks, id)
	l.mu.Unlock()
}
