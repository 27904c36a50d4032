// Package chat implements the client side of a two-party conversation: room
// identity, the ordered in-memory message log, optimistic sends and the live
// subscription feed, reconciled by message id.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toiletmap/internal/logger"
	"github.com/toiletmap/internal/model"
)

var (
	ErrClosed       = errors.New("chat session closed")
	ErrEmptyMessage = errors.New("empty message body")
	ErrNotFailed    = errors.New("message is not in failed state")
)

// MessageStore persists and loads chat messages. History returns messages
// newest first (storage order); the session re-orders them for display.
type MessageStore interface {
	History(ctx context.Context, roomID string) ([]model.ChatMessage, error)
	Insert(ctx context.Context, m *model.ChatMessage) error
}

// Subscription is a live stream of newly inserted messages for one room.
// Events is closed after Close.
type Subscription interface {
	Events() <-chan model.ChatMessage
	Close()
}

// Subscriber opens room-scoped subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, roomID string) (Subscription, error)
}

// Session is the state of one open chat screen. Two event sources mutate the
// log (the local send path and the remote subscription) and both go through
// apply, which reconciles by message id so a subscription echo of an
// optimistic append never renders twice.
type Session struct {
	roomID        string
	userID        string
	counterpartID string
	store         MessageStore
	sub           Subscription

	mu       sync.Mutex
	messages []model.ChatMessage
	index    map[string]int
	closed   bool

	wg sync.WaitGroup
}

// NewSession derives the room key for (userID, counterpartID) and prepares an
// empty log. Call Open before use.
func NewSession(userID, counterpartID string, store MessageStore) *Session {
	return &Session{
		roomID:        RoomKey(userID, counterpartID),
		userID:        userID,
		counterpartID: counterpartID,
		store:         store,
		index:         make(map[string]int),
	}
}

func (s *Session) RoomID() string { return s.roomID }

// Open loads persisted history and starts the live subscription. The store
// returns history newest first; the in-memory log presents chronological
// order, so the fetched slice is reversed before it becomes the working list.
func (s *Session) Open(ctx context.Context, subscriber Subscriber) error {
	history, err := s.store.History(ctx, s.roomID)
	if err != nil {
		return fmt.Errorf("chat history room=%s: %w", s.roomID, err)
	}

	s.mu.Lock()
	s.messages = make([]model.ChatMessage, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		m.State = model.DeliverySent
		s.index[m.ID] = len(s.messages)
		s.messages = append(s.messages, m)
	}
	s.mu.Unlock()

	sub, err := subscriber.Subscribe(ctx, s.roomID)
	if err != nil {
		return fmt.Errorf("chat subscribe room=%s: %w", s.roomID, err)
	}
	s.sub = sub

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for ev := range sub.Events() {
			s.apply(ev)
		}
	}()
	return nil
}

// apply reconciles one remote event into the log. An event whose id is
// already present is the echo of our own optimistic append: it confirms the
// message and carries the authoritative created_at. Unknown ids are appended.
func (s *Session) apply(ev model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if i, ok := s.index[ev.ID]; ok {
		s.messages[i].State = model.DeliverySent
		s.messages[i].CreatedAt = ev.CreatedAt
		return
	}
	ev.State = model.DeliverySent
	s.index[ev.ID] = len(s.messages)
	s.messages = append(s.messages, ev)
}

// Send appends the outgoing message optimistically (the sender sees it with
// zero latency) and persists it in the background. A failed write marks the
// entry failed instead of dropping it; Retry re-issues the insert.
func (s *Session) Send(ctx context.Context, body string) (string, error) {
	if body == "" {
		return "", ErrEmptyMessage
	}
	m := model.ChatMessage{
		ID:         uuid.New().String(),
		RoomID:     s.roomID,
		SenderID:   s.userID,
		ReceiverID: s.counterpartID,
		Body:       body,
		State:      model.DeliveryPending,
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	s.index[m.ID] = len(s.messages)
	s.messages = append(s.messages, m)
	s.mu.Unlock()

	// Fire-and-forget once issued; the result comes back as a state change.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.persist(ctx, m)
	}()
	return m.ID, nil
}

func (s *Session) persist(ctx context.Context, m model.ChatMessage) {
	stored := m
	stored.State = ""
	if err := s.store.Insert(ctx, &stored); err != nil {
		logger.Errorf("chat send room=%s msg=%s: %v", s.roomID, m.ID, err)
		s.setState(m.ID, model.DeliveryFailed)
		return
	}
	s.setState(m.ID, model.DeliverySent)
}

// Retry re-issues the remote write for a message previously marked failed.
func (s *Session) Retry(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	i, ok := s.index[id]
	if !ok || s.messages[i].State != model.DeliveryFailed {
		s.mu.Unlock()
		return ErrNotFailed
	}
	s.messages[i].State = model.DeliveryPending
	m := s.messages[i]
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.persist(ctx, m)
	}()
	return nil
}

func (s *Session) setState(id string, state model.DeliveryState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if i, ok := s.index[id]; ok {
		// A subscription echo may have confirmed the message already; never
		// downgrade sent back to pending/failed.
		if s.messages[i].State == model.DeliverySent {
			return
		}
		s.messages[i].State = state
	}
}

// Messages returns a chronological snapshot of the log.
func (s *Session) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Close cancels the subscription and stops all appends. Safe to call once
// per session; after Close the log is frozen.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.sub != nil {
		s.sub.Close()
	}
	s.wg.Wait()
}
