package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionTTL is how long an untouched session survives. A dialog the user
// abandons without closing must not keep its captured attendee info around
// forever.
const sessionTTL = 30 * time.Minute

type session struct {
	wizard  *Wizard
	touched time.Time
}

// Sessions holds the open wizard dialogs, keyed by an opaque session id.
// Each session owns its own state; there is nothing shared between them.
// Sessions expire sessionTTL after their last action.
type Sessions struct {
	mu  sync.Mutex
	m   map[string]*session
	now func() time.Time
}

// NewSessions constructs an empty session store.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*session), now: time.Now}
}

// Open registers a wizard and returns its session id. Expired sessions are
// swept on every open, so an unclosed dialog cannot grow the store without
// bound.
func (s *Sessions) Open(w *Wizard) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.sweep()
	s.m[id] = &session{wizard: w, touched: s.now()}
	s.mu.Unlock()
	return id
}

// Get returns the wizard for a session id and refreshes its expiry. An
// expired session is treated exactly like an unknown one.
func (s *Sessions) Get(id string) (*Wizard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess) {
		delete(s.m, id)
		sess.wizard.Close()
		return nil, false
	}
	sess.touched = s.now()
	return sess.wizard, true
}

// Close resets and forgets a session. Closing an unknown id is a no-op,
// matching a dialog that was already dismissed.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	sess, ok := s.m[id]
	delete(s.m, id)
	s.mu.Unlock()
	if ok {
		sess.wizard.Close()
	}
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// sweep drops every expired session. Callers hold s.mu.
func (s *Sessions) sweep() {
	for id, sess := range s.m {
		if s.expired(sess) {
			delete(s.m, id)
			sess.wizard.Close()
		}
	}
}

func (s *Sessions) expired(sess *session) bool {
	return s.now().Sub(sess.touched) > sessionTTL
}
