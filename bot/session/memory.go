package session

import "sync"

type entry struct {
	mu  sync.Mutex
	ctx Context
	// retired is set by Reset once the counters were moved to Store.retired.
	retired bool
}

// Store is an in-memory registry of conversation contexts. Different users are
// served in parallel; turns of the same user run one at a time.
type Store struct {
	mu          sync.RWMutex
	sessions    map[int64]*entry
	historySize int
	// retired keeps counters of reset sessions so totals stay monotonic.
	retired Counters
}

// NewStore returns an empty Store whose contexts keep historySize utterances.
func NewStore(historySize int) *Store {
	return &Store{sessions: make(map[int64]*entry), historySize: historySize}
}

func (s *Store) get(userID int64) *entry {
	s.mu.RLock()
	e, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.sessions[userID]; !ok {
		e = &entry{ctx: Context{historySize: s.historySize}}
		s.sessions[userID] = e
	}
	return e
}

// Do runs fn with exclusive access to the user's context, creating it on first use.
func (s *Store) Do(userID int64, fn func(*Context)) {
	e := s.lock(userID)
	defer e.mu.Unlock()
	fn(&e.ctx)
}

// lock returns the user's live entry with its mutex held. An entry retired by
// Reset between get and Lock is skipped; Reset already removed it from the map.
func (s *Store) lock(userID int64) *entry {
	for {
		e := s.get(userID)
		e.mu.Lock()
		if !e.retired {
			return e
		}
		e.mu.Unlock()
	}
}

// Snapshot returns a copy of the user's context.
func (s *Store) Snapshot(userID int64) (Context, bool) {
	s.mu.RLock()
	e, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return Context{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.clone(), true
}

// Reset drops the user's context. Its counters still count towards Totals.
func (s *Store) Reset(userID int64) bool {
	s.mu.Lock()
	e, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	e.retired = true
	stats := e.ctx.Stats
	e.mu.Unlock()

	s.mu.Lock()
	s.retired = s.retired.Add(stats)
	s.mu.Unlock()
	return true
}

// Totals sums counters over all sessions and returns the number of live sessions.
func (s *Store) Totals() (Counters, int) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	total := s.retired
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		total = total.Add(e.ctx.Stats)
		e.mu.Unlock()
	}
	return total, len(entries)
}
