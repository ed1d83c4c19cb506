package services

import "sync"

// tournamentLocks hands out one mutex per tournament id, serializing result
// submissions for the same tournament. Without this, two results landing in
// the same round concurrently could both decide to generate the next round,
// or drop a standings increment.
type tournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{locks: make(map[int]*sync.Mutex)}
}

func (l *tournamentLocks) Lock(tournamentID int) {
	l.mu.Lock()
	m, ok := l.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tournamentID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

func (l *tournamentLocks) Unlock(tournamentID int) {
	l.mu.Lock()
	m := l.locks[tournamentID]
	l.mu.Unlock()
	m.Unlock()
}
