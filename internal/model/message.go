package model

import "time"

// DeliveryState is the client-side lifecycle of a chat message. Persisted
// rows are always "sent"; "pending" and "failed" exist only in the in-memory
// log of an open chat session.
type DeliveryState string

const (
	DeliveryPending DeliveryState = "pending"
	DeliverySent    DeliveryState = "sent"
	DeliveryFailed  DeliveryState = "failed"
)

// ChatMessage is one append-only row of a two-party conversation. RoomID is
// derived from the participant pair, never assigned independently.
type ChatMessage struct {
	ID         string        `json:"id"`
	RoomID     string        `json:"room_id"`
	SenderID   string        `json:"sender_id"`
	ReceiverID string        `json:"receiver_id"`
	Body       string        `json:"body"`
	State      DeliveryState `json:"state,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
