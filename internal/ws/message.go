package ws

import "github.com/toiletmap/internal/model"

type EventType string

const (
	EventNewMessage   EventType = "new_message"
	EventTyping       EventType = "typing"
	EventAlertCreated EventType = "alert_created"
	EventAlertDeleted EventType = "alert_deleted"
	EventError        EventType = "error"
)

// IncomingMessage is what the client sends to the server.
// MessageID is client-generated; the server keeps it so the sender can match
// the echo against its optimistic pending entry.
type IncomingMessage struct {
	Type       EventType `json:"type"`
	MessageID  string    `json:"message_id,omitempty"`
	ReceiverID string    `json:"receiver_id,omitempty"`
	Content    string    `json:"content,omitempty"`
}

// OutgoingMessage is what the server sends to the client.
// Payload uses typed structs to avoid heap-heavy map[string]any.
type OutgoingMessage struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// TypingPayload is sent to the counterpart while the sender is typing.
type TypingPayload struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// AlertPayload is broadcast to every connected client.
type AlertPayload struct {
	Alert model.Alert `json:"alert"`
}

// AlertDeletedPayload is broadcast when an admin removes an alert.
type AlertDeletedPayload struct {
	AlertID string `json:"alert_id"`
}
