package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/model"
	"studio/internal/store"
)

// storeBackend serves one user's view straight from a store.
type storeBackend struct {
	st   *store.Store
	self string

	mu       sync.Mutex
	sendGate chan struct{}
	sendErr  error
	fetchErr error
	fetches  map[string]int
}

func newStoreBackend(self string) *storeBackend {
	return &storeBackend{st: store.NewSeeded(), self: self, fetches: make(map[string]int)}
}

func (b *storeBackend) Messages(_ context.Context, peer string) ([]model.DirectMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches[peer]++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return b.st.MessagesBetween(b.self, peer), nil
}

func (b *storeBackend) Send(ctx context.Context, peer, content string) (model.DirectMessage, error) {
	b.mu.Lock()
	gate, err := b.sendGate, b.sendErr
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.DirectMessage{}, ctx.Err()
		}
	}
	if err != nil {
		return model.DirectMessage{}, err
	}
	return b.st.SendMessage(b.self, peer, content), nil
}

func (b *storeBackend) Contacts(context.Context) ([]model.Contact, error) {
	now := time.Now()
	var out []model.Contact
	for _, t := range b.st.Teachers() {
		out = append(out, model.TeacherContact(t, now))
	}
	return out, nil
}

func (b *storeBackend) fetchCount(peer string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetches[peer]
}

var fastConfig = Config{
	MessagePoll: 5 * time.Millisecond,
	ContactPoll: 5 * time.Millisecond,
	MatchWindow: 10 * time.Second,
}

func newSession(t *testing.T, b *storeBackend) *Session {
	t.Helper()
	s := NewSession(context.Background(), b, b.self, fastConfig, zerolog.Nop())
	t.Cleanup(s.Close)
	return s
}

func waitState(t *testing.T, s *Session, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return s.State() == want }, 2*time.Second, 2*time.Millisecond)
}

func TestSessionLifecycle(t *testing.T) {
	b := newStoreBackend(parent)
	s := newSession(t, b)
	assert.Equal(t, Idle, s.State())

	require.NoError(t, s.Select(teacher))
	waitState(t, s, Active)

	v := s.Snapshot()
	assert.Equal(t, teacher, v.Peer)
	assert.Equal(t, []string{"m1", "m2"}, ids(v.Entries))

	s.Deselect()
	v = s.Snapshot()
	assert.Equal(t, Idle, v.State)
	assert.Empty(t, v.Peer)
	assert.Empty(t, v.Entries)

	s.Close()
	assert.Equal(t, Stopped, s.State())
	assert.ErrorIs(t, s.Select(teacher), ErrClosed)
	_, err := s.Send(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrClosed)
	s.Close()

	for range s.Updates() {
	}
}

func TestSessionStartsLoadingUntilFirstFetch(t *testing.T) {
	b := newStoreBackend(parent)
	b.fetchErr = errors.New("offline")
	s := newSession(t, b)

	require.NoError(t, s.Select(teacher))
	require.Eventually(t, func() bool { return b.fetchCount(teacher) >= 2 }, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, Loading, s.State())

	b.mu.Lock()
	b.fetchErr = nil
	b.mu.Unlock()
	waitState(t, s, Active)
}

func TestSelectOtherPeerStopsPreviousPoll(t *testing.T) {
	b := newStoreBackend(parent)
	s := newSession(t, b)

	require.NoError(t, s.Select(teacher))
	waitState(t, s, Active)

	require.NoError(t, s.Select("T-002"))
	frozen := b.fetchCount(teacher)
	waitState(t, s, Active)
	require.Eventually(t, func() bool { return b.fetchCount("T-002") >= 3 }, 2*time.Second, 2*time.Millisecond)

	assert.Equal(t, frozen, b.fetchCount(teacher))
	v := s.Snapshot()
	assert.Equal(t, "T-002", v.Peer)
	assert.Empty(t, v.Entries)
}

func TestSendShowsPendingThenConfirms(t *testing.T) {
	b := newStoreBackend(parent)
	gate := make(chan struct{})
	b.sendGate = gate
	s := newSession(t, b)

	require.NoError(t, s.Select(teacher))
	waitState(t, s, Active)

	type result struct {
		msg model.DirectMessage
		err error
	}
	res := make(chan result, 1)
	go func() {
		m, err := s.Send(context.Background(), "Running late")
		res <- result{m, err}
	}()

	require.Eventually(t, func() bool {
		entries := s.Snapshot().Entries
		return len(entries) == 3 && entries[2].Pending
	}, 2*time.Second, 2*time.Millisecond)
	assert.True(t, IsTemp(s.Snapshot().Entries[2].ID))

	close(gate)
	r := <-res
	require.NoError(t, r.err)

	require.Eventually(t, func() bool {
		entries := s.Snapshot().Entries
		return len(entries) == 3 && entries[2].ID == r.msg.ID && !entries[2].Pending
	}, 2*time.Second, 2*time.Millisecond)
}

func TestSendFailureRemovesPending(t *testing.T) {
	b := newStoreBackend(parent)
	b.sendErr = errors.New("boom")
	s := newSession(t, b)

	require.NoError(t, s.Select(teacher))
	waitState(t, s, Active)

	_, err := s.Send(context.Background(), "lost")
	assert.Error(t, err)
	assert.Len(t, s.Snapshot().Entries, 2)
}

func TestSendValidation(t *testing.T) {
	s := newSession(t, newStoreBackend(parent))
	_, err := s.Send(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = s.Send(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoPeer)
}

func TestUpdatesCarryIncomingMessages(t *testing.T) {
	b := newStoreBackend(parent)
	s := newSession(t, b)
	require.NoError(t, s.Select(teacher))

	first := <-s.Updates()
	assert.Equal(t, teacher, first.Peer)
	assert.Len(t, first.Messages, 2)

	incoming := b.st.SendMessage(teacher, parent, "See you at 4")
	select {
	case u := <-s.Updates():
		require.Len(t, u.Messages, 1)
		assert.Equal(t, incoming.ID, u.Messages[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no update for incoming message")
	}
}

func TestContactsPolled(t *testing.T) {
	b := newStoreBackend(parent)
	s := newSession(t, b)

	require.Eventually(t, func() bool { return len(s.Snapshot().Contacts) == 3 }, 2*time.Second, 2*time.Millisecond)

	_, err := b.st.ToggleTeacherPresence(0)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return !s.Snapshot().Contacts[0].IsOnline
	}, 2*time.Second, 2*time.Millisecond)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "stopped", Stopped.String())
}
