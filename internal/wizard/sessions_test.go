package wizard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsOpenGetClose(t *testing.T) {
	s := NewSessions()
	w := New(Config{Event: testEvent(ticket("t1", "Free", false)),
		Identity: &fakeIdentity{userID: "user-1"}, Registrar: &fakeRegistrar{}})

	id := s.Open(w)
	require.NotEmpty(t, id)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, w, got)

	// Two sessions over the same event never share state.
	other := New(Config{Event: testEvent(ticket("t1", "Free", false)),
		Identity: &fakeIdentity{userID: "user-2"}, Registrar: &fakeRegistrar{}})
	otherID := s.Open(other)
	assert.NotEqual(t, id, otherID)

	require.NoError(t, w.SubmitInfo(context.Background(), validInfo()))
	assert.Equal(t, StepAttendeeInfo, other.Step())

	s.Close(id)
	_, ok = s.Get(id)
	assert.False(t, ok)
	// The wizard itself was reset on close.
	assert.Equal(t, StepAttendeeInfo, w.Step())
	assert.Empty(t, w.Form().Email)

	// Closing again, or an id that never existed, does nothing.
	s.Close(id)
	s.Close("not-a-session")
}

func newTestWizard(userID string) *Wizard {
	return New(Config{Event: testEvent(ticket("t1", "Free", false)),
		Identity: &fakeIdentity{userID: userID}, Registrar: &fakeRegistrar{}})
}

func TestSessionsExpireWhenAbandoned(t *testing.T) {
	s := NewSessions()
	clock := time.Now()
	s.now = func() time.Time { return clock }

	w := newTestWizard("user-1")
	id := s.Open(w)
	require.NoError(t, w.SubmitInfo(context.Background(), validInfo()))

	// Still alive just inside the TTL; the lookup refreshes the expiry.
	clock = clock.Add(sessionTTL)
	_, ok := s.Get(id)
	require.True(t, ok)

	clock = clock.Add(sessionTTL / 2)
	_, ok = s.Get(id)
	require.True(t, ok)

	// Past the TTL an abandoned session is gone and its input discarded.
	clock = clock.Add(sessionTTL + time.Minute)
	_, ok = s.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, w.Form().Email)
}

func TestSessionsSweptOnOpen(t *testing.T) {
	s := NewSessions()
	clock := time.Now()
	s.now = func() time.Time { return clock }

	// A crowd of dialogs opened and walked away from.
	for i := 0; i < 100; i++ {
		s.Open(newTestWizard(fmt.Sprintf("user-%d", i)))
	}
	require.Equal(t, 100, s.Len())

	// The next open after the TTL clears all of them.
	clock = clock.Add(sessionTTL + time.Minute)
	fresh := s.Open(newTestWizard("user-fresh"))
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get(fresh)
	assert.True(t, ok)
}
