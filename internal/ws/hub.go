package ws

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toiletmap/internal/chat"
	"github.com/toiletmap/internal/logger"
	"github.com/toiletmap/internal/model"
	"github.com/toiletmap/internal/repository"
)

// PushNotifier отправляет пуш-уведомления. Если nil — пуши не отправляются.
type PushNotifier interface {
	Notify(ctx context.Context, userID, title, body string, data map[string]string)
}

type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	total      int
	maxConns   int
	msgRepo    *repository.MessageRepository
	userRepo   *repository.UserRepository
	pushClient PushNotifier
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(
	msgRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	maxConns int,
	pushClient PushNotifier,
) *Hub {
	if maxConns <= 0 {
		maxConns = 10000
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		maxConns:   maxConns,
		msgRepo:    msgRepo,
		userRepo:   userRepo,
		pushClient: pushClient,
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) shutdown() {
	// Collect all clients under the lock, do NOT perform I/O under mutex.
	h.mu.Lock()
	allClients := make([]*Client, 0, h.total)
	for _, clients := range h.clients {
		for c := range clients {
			allClients = append(allClients, c)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	h.total = 0
	h.mu.Unlock()

	// Close connections outside the lock (network I/O).
	for _, c := range allClients {
		c.Close()
	}
	for _, c := range allClients {
		c.Wait()
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.total >= h.maxConns {
		logger.Errorf("ws connection limit reached (%d), rejecting user=%s", h.maxConns, c.userID)
		c.Close()
		return
	}
	if _, ok := h.clients[c.userID]; !ok {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.total++
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	clients, ok := h.clients[c.userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, exists := clients[c]; !exists {
		h.mu.Unlock()
		return
	}
	delete(clients, c)
	h.total--
	if len(clients) == 0 {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	// Network I/O outside the lock.
	c.Close()
}

// HandleMessage dispatches incoming WebSocket messages.
func (h *Hub) HandleMessage(ctx context.Context, c *Client, msg IncomingMessage) {
	switch msg.Type {
	case EventNewMessage:
		h.handleNewMessage(ctx, c, msg)
	case EventTyping:
		h.handleTyping(c, msg)
	default:
		h.sendToClient(c, OutgoingMessage{Type: EventError, Payload: "unknown event type"})
	}
}

func (h *Hub) handleNewMessage(ctx context.Context, c *Client, msg IncomingMessage) {
	defer logger.DeferLogDuration("ws.handleNewMessage", time.Now())()
	content := strings.TrimSpace(msg.Content)
	if msg.ReceiverID == "" || content == "" {
		h.sendToClient(c, OutgoingMessage{Type: EventError, Payload: "receiver_id and content required"})
		return
	}
	if msg.ReceiverID == c.userID {
		h.sendToClient(c, OutgoingMessage{Type: EventError, Payload: "cannot message yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	receiver, err := h.userRepo.GetByID(ctx, msg.ReceiverID)
	if err != nil {
		h.sendToClient(c, OutgoingMessage{Type: EventError, Payload: "receiver not found"})
		return
	}

	// Клиентский id сохраняется, чтобы отправитель сопоставил эхо со своей
	// оптимистичной записью. Невалидный id заменяется новым.
	id := msg.MessageID
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		id = uuid.New().String()
	}
	m := &model.ChatMessage{
		ID:         id,
		RoomID:     chat.RoomKey(c.userID, msg.ReceiverID),
		SenderID:   c.userID,
		ReceiverID: msg.ReceiverID,
		Body:       content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.msgRepo.Create(ctx, m); err != nil {
		logger.Errorf("ws save message room=%s user=%s: %v", m.RoomID, c.userID, err)
		h.sendToClient(c, OutgoingMessage{Type: EventError, Payload: "failed to save message"})
		return
	}

	out := OutgoingMessage{Type: EventNewMessage, Payload: m}
	h.sendToUser(c.userID, out)
	h.sendToUser(msg.ReceiverID, out)

	if h.pushClient != nil && !h.isConnected(msg.ReceiverID) {
		sender, err := h.userRepo.GetByID(ctx, c.userID)
		title := "Новое сообщение"
		if err == nil && sender.Name != "" {
			title = sender.Name
		}
		body := content
		if len(body) > 120 {
			body = body[:117] + "..."
		}
		data := map[string]string{"room_id": m.RoomID, "message_id": m.ID}
		go h.pushClient.Notify(context.Background(), receiver.ID, title, body, data)
	}
}

func (h *Hub) handleTyping(c *Client, msg IncomingMessage) {
	if msg.ReceiverID == "" || msg.ReceiverID == c.userID {
		return
	}
	h.sendToUser(msg.ReceiverID, OutgoingMessage{
		Type: EventTyping,
		Payload: TypingPayload{
			RoomID: chat.RoomKey(c.userID, msg.ReceiverID),
			UserID: c.userID,
		},
	})
}

// BroadcastAlert рассылает объявление всем подключённым клиентам.
func (h *Hub) BroadcastAlert(a model.Alert) {
	defer logger.DeferLogDuration("ws.BroadcastAlert", time.Now())()
	h.broadcastAll(OutgoingMessage{Type: EventAlertCreated, Payload: AlertPayload{Alert: a}})
}

// BroadcastAlertDeleted рассылает удаление объявления.
func (h *Hub) BroadcastAlertDeleted(alertID string) {
	h.broadcastAll(OutgoingMessage{Type: EventAlertDeleted, Payload: AlertDeletedPayload{AlertID: alertID}})
}

func (h *Hub) broadcastAll(msg OutgoingMessage) {
	h.mu.RLock()
	targets := make([]*Client, 0, h.total)
	for _, clients := range h.clients {
		for c := range clients {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.sendToClient(c, msg)
	}
}

func (h *Hub) isConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) sendToUser(userID string, msg OutgoingMessage) {
	h.mu.RLock()
	clients, ok := h.clients[userID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	targets := make([]*Client, 0, len(clients))
	for c := range clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.sendToClient(c, msg)
	}
}

func (h *Hub) sendToClient(c *Client, msg OutgoingMessage) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		// Backpressure: send buffer full, close slow client.
		logger.Errorf("ws send buffer full, closing slow client user=%s", c.userID)
		c.Close()
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
