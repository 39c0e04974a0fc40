package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps one State per session id. Sessions idle for longer than the
// TTL are discarded and restart from the initial state.
type Store struct {
	mu       sync.Mutex
	initial  State
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*entry
}

type entry struct {
	state   State
	touched time.Time
}

// NewStore creates a store handing out initial to new sessions.
func NewStore(initial State, ttl time.Duration) *Store {
	return &Store{
		initial:  initial,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the state for id. Unknown, malformed or expired ids get a fresh
// session; the returned id is the one the caller must use from now on.
func (s *Store) Get(id string) (string, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, e := s.lookup(id)
	return id, e.state
}

// Peek returns the state for a live session id, or the initial state when
// there is none. Unlike Get it never creates a session.
func (s *Store) Peek(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.sessions[id]; ok && !s.expired(e, now) {
		e.touched = now
		return e.state
	}
	return s.initial
}

// Update applies fn to the state for id and stores the result.
func (s *Store) Update(id string, fn func(State) State) (string, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, e := s.lookup(id)
	e.state = fn(e.state)
	return id, e.state
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// lookup must be called with mu held.
func (s *Store) lookup(id string) (string, *entry) {
	now := s.now()
	if _, err := uuid.Parse(id); err == nil {
		if e, ok := s.sessions[id]; ok {
			if !s.expired(e, now) {
				e.touched = now
				return id, e
			}
			delete(s.sessions, id)
		}
	}
	id = uuid.NewString()
	e := &entry{state: s.initial, touched: now}
	s.sessions[id] = e
	return id, e
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.touched) > s.ttl
}
