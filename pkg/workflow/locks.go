package workflow

import "sync"

// pairLocks serializes mutations per (candidate, job) pair so concurrent
// callers cannot interleave read-modify-write cycles on the same instance.
// Entries are reference-counted and dropped once the last holder releases,
// so the map stays proportional to the pairs currently in flight.
type pairLocks struct {
	mu    sync.Mutex
	locks map[string]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[string]*pairLock)}
}

// acquire locks the pair and returns the release function.
func (p *pairLocks) acquire(candidateID, jobID string) func() {
	key := candidateID + ":" + jobID

	p.mu.Lock()
	lock, ok := p.locks[key]
	if !ok {
		lock = &pairLock{}
		p.locks[key] = lock
	}
	lock.refs++
	p.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		p.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}
