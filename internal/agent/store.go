package agent

import "sync"

// Store keeps per-thread conversation state in memory. Threads are created
// on first use and live for the process lifetime; persistence across
// restarts is out of scope.
type Store struct {
	mu      sync.Mutex
	threads map[string]*thread
}

type thread struct {
	mu    sync.Mutex
	state State
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{threads: make(map[string]*thread)}
}

// Acquire returns the state for threadID with exclusive access, creating
// the thread if needed. The caller must invoke release when done; until
// then other calls for the same thread block, which keeps each thread
// single-writer.
func (s *Store) Acquire(threadID string) (*State, func()) {
	s.mu.Lock()
	th, ok := s.threads[threadID]
	if !ok {
		th = &thread{}
		s.threads[threadID] = th
	}
	s.mu.Unlock()

	th.mu.Lock()
	return &th.state, th.mu.Unlock
}

// Len returns the number of known threads.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.threads)
}
