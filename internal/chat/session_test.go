package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toiletmap/internal/model"
)

// fakeStore keeps rows in insert order and serves history newest first, like
// the real storage query does.
type fakeStore struct {
	mu      sync.Mutex
	rows    []model.ChatMessage
	failing bool
}

func (f *fakeStore) History(_ context.Context, roomID string) ([]model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ChatMessage, 0, len(f.rows))
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].RoomID == roomID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, m *model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("insert refused")
	}
	f.rows = append(f.rows, *m)
	return nil
}

type fakeSub struct {
	ch   chan model.ChatMessage
	once sync.Once
}

func newFakeSub() *fakeSub {
	return &fakeSub{ch: make(chan model.ChatMessage, 16)}
}

func (f *fakeSub) Events() <-chan model.ChatMessage { return f.ch }
func (f *fakeSub) Close()                           { f.once.Do(func() { close(f.ch) }) }

type fakeSubscriber struct {
	sub *fakeSub
}

func (f *fakeSubscriber) Subscribe(context.Context, string) (Subscription, error) {
	return f.sub, nil
}

func waitState(t *testing.T, s *Session, id string, want model.DeliveryState) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, m := range s.Messages() {
			if m.ID == id {
				return m.State == want
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func bodies(msgs []model.ChatMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Body
	}
	return out
}

func TestOpenReversesHistoryToChronological(t *testing.T) {
	store := &fakeStore{}
	room := RoomKey("alice", "bob")
	base := time.Now().UTC()
	for i, body := range []string{"first", "second", "third"} {
		store.rows = append(store.rows, model.ChatMessage{
			ID: body, RoomID: room, SenderID: "alice", ReceiverID: "bob",
			Body: body, CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	s := NewSession("alice", "bob", store)
	require.NoError(t, s.Open(context.Background(), &fakeSubscriber{sub: newFakeSub()}))
	defer s.Close()

	assert.Equal(t, []string{"first", "second", "third"}, bodies(s.Messages()))
}

func TestSendOptimisticThenEchoDedupes(t *testing.T) {
	store := &fakeStore{}
	sub := newFakeSub()
	s := NewSession("alice", "bob", store)
	require.NoError(t, s.Open(context.Background(), &fakeSubscriber{sub: sub}))
	defer s.Close()

	id, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	require.Len(t, s.Messages(), 1) // visible immediately
	waitState(t, s, id, model.DeliverySent)

	// The backend echoes the insert back through the live subscription.
	sub.ch <- model.ChatMessage{ID: id, RoomID: s.RoomID(), SenderID: "alice", Body: "hi", CreatedAt: time.Now().UTC()}

	require.Eventually(t, func() bool { return len(s.Messages()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, s.Messages(), 1, "echo of own send must not duplicate")
}

func TestSubscriptionAppendsCounterpartMessages(t *testing.T) {
	store := &fakeStore{}
	sub := newFakeSub()
	s := NewSession("alice", "bob", store)
	require.NoError(t, s.Open(context.Background(), &fakeSubscriber{sub: sub}))
	defer s.Close()

	sub.ch <- model.ChatMessage{ID: "m1", RoomID: s.RoomID(), SenderID: "bob", Body: "hello", CreatedAt: time.Now().UTC()}

	require.Eventually(t, func() bool { return len(s.Messages()) == 1 }, time.Second, 5*time.Millisecond)
	got := s.Messages()[0]
	assert.Equal(t, "bob", got.SenderID)
	assert.Equal(t, model.DeliverySent, got.State)
}

func TestFailedSendIsKeptAndRetryable(t *testing.T) {
	store := &fakeStore{failing: true}
	s := NewSession("alice", "bob", store)
	require.NoError(t, s.Open(context.Background(), &fakeSubscriber{sub: newFakeSub()}))
	defer s.Close()

	id, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	waitState(t, s, id, model.DeliveryFailed)
	require.Len(t, s.Messages(), 1, "failed message must stay visible")

	store.mu.Lock()
	store.failing = false
	store.mu.Unlock()
	require.NoError(t, s.Retry(context.Background(), id))
	waitState(t, s, id, model.DeliverySent)

	history, err := store.History(context.Background(), s.RoomID())
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRetryRejectsNonFailedMessages(t *testing.T) {
	store := &fakeStore{}
	s := NewSession("alice", "bob", store)
	require.NoError(t, s.Open(context.Background(), &fakeSubscriber{sub: newFakeSub()}))
	defer s.Close()

	id, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	waitState(t, s, id, model.DeliverySent)

	assert.ErrorIs(t, s.Retry(context.Background(), id), ErrNotFailed)
	assert.ErrorIs(t, s.Retry(context.Background(), "unknown"), ErrNotFailed)
}

func TestCloseFreezesLog(t *testing.T) {
	store := &fakeStore{}
	s := NewSession("alice", "bob", store)
	require.NoError(t, s.Open(context.Background(), &fakeSubscriber{sub: newFakeSub()}))
	s.Close()

	_, err := s.Send(context.Background(), "late")
	assert.ErrorIs(t, err, ErrClosed)

	s.apply(model.ChatMessage{ID: "late-event", RoomID: s.RoomID(), Body: "late"})
	assert.Empty(t, s.Messages())

	s.Close() // idempotent
}

func TestSendValidation(t *testing.T) {
	s := NewSession("alice", "bob", &fakeStore{})
	require.NoError(t, s.Open(context.Background(), &fakeSubscriber{sub: newFakeSub()}))
	defer s.Close()

	_, err := s.Send(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

// Two users exchange "hi" then "hello"; both clients, opening the room
// independently, see the same chronological transcript.
func TestTwoClientTranscript(t *testing.T) {
	store := &fakeStore{}

	a := NewSession("alice", "bob", store)
	require.NoError(t, a.Open(context.Background(), &fakeSubscriber{sub: newFakeSub()}))
	id1, err := a.Send(context.Background(), "hi")
	require.NoError(t, err)
	waitState(t, a, id1, model.DeliverySent)
	a.Close()

	b := NewSession("bob", "alice", store)
	require.NoError(t, b.Open(context.Background(), &fakeSubscriber{sub: newFakeSub()}))
	id2, err := b.Send(context.Background(), "hello")
	require.NoError(t, err)
	waitState(t, b, id2, model.DeliverySent)
	b.Close()

	assert.Equal(t, a.RoomID(), b.RoomID())

	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		s := NewSession(pair[0], pair[1], store)
		require.NoError(t, s.Open(context.Background(), &fakeSubscriber{sub: newFakeSub()}))
		assert.Equal(t, []string{"hi", "hello"}, bodies(s.Messages()))
		s.Close()
	}
}
