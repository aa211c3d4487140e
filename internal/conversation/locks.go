package conversation

import "sync"

// sessionLocks hands out one mutex per session id so concurrent turns on the
// same session serialize while turns on different sessions proceed in
// parallel. Locks are never evicted; the per-entry cost is one mutex and the
// population is bounded by session cleanup upstream.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *sessionLocks) forSession(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}
