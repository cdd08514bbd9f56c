package service

import "sync"

// ScheduleLocks serializes engine runs per schedule id. The generator and
// resolver rewrite assignment rows for a whole schedule, so concurrent runs
// on the same id must queue; the unique indexes on the assignment slot
// tuples remain the hard backstop.
type ScheduleLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewScheduleLocks constructs an empty lock set.
func NewScheduleLocks() *ScheduleLocks {
	return &ScheduleLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for one schedule and returns its unlock func.
func (l *ScheduleLocks) Lock(scheduleID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[scheduleID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[scheduleID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
