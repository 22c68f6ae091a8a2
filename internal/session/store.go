package session

import (
	"sync"
	"time"
)

// Session is one chat's application state. The state lives only in memory;
// an evicted session starts over like a reloaded page.
type Session struct {
	mu       sync.Mutex
	state    State
	lastSeen time.Time
}

// Update applies fn to the state under the session lock and returns a
// snapshot of the result.
func (s *Session) Update(fn func(state *State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)

	return s.state.Snapshot()
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Snapshot()
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Articles.Loading() || s.state.Activities.Loading()
}

type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns the chat's session, creating it on first use.
func (s *Store) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &Session{state: NewState()}
		s.sessions[chatID] = sess
	}
	sess.lastSeen = now

	return sess
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// EvictIdle drops sessions unused for longer than ttl. Sessions with a
// request in flight are kept.
func (s *Store) EvictIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0

	for chatID, sess := range s.sessions {
		if now.Sub(sess.lastSeen) <= ttl || sess.busy() {
			continue
		}

		delete(s.sessions, chatID)
		evicted++
	}

	return evicted
}
