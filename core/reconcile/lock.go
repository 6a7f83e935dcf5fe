package reconcile

import (
	"context"
	"sync"
)

// jobLocks hands out one single-slot semaphore per job key.
type jobLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// globalLocks is the process-wide lock table for all sync jobs.
var globalLocks = &jobLocks{
	slots: make(map[string]chan struct{}),
}

func (l *jobLocks) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

// acquire blocks until the job is free or ctx is done.
func (l *jobLocks) acquire(ctx context.Context, key string) (func(), error) {
	s := l.slot(key)
	select {
	case s <- struct{}{}:
		return func() { <-s }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
