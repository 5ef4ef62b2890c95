package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yigit/gradebook/internal/app/models/dto"
)

// Event types pushed to clients
const (
	EventMessage = "message"
	EventError   = "error"
)

// Inbound frame actions
const (
	ActionSendMessage = "sendMessage"
	ActionMarkAsRead  = "markAsRead"
)

// Event is a server-to-client push
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent encodes payload as the event data
func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	return Event{Type: eventType, Data: data}, nil
}

// MessagePayload is the push sent to both participants when a message is stored
type MessagePayload struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Text       string `json:"text"`
	SentTime   string `json:"sentTime"`
}

// ErrorPayload tells a single connection its frame was rejected
type ErrorPayload struct {
	Action  string `json:"action,omitempty"`
	Message string `json:"message"`
}

// InboundFrame is a client-to-server request
type InboundFrame struct {
	Action     string `json:"action"`
	ReceiverID int64  `json:"receiverId,omitempty"`
	Text       string `json:"text,omitempty"`
	OtherID    int64  `json:"otherId,omitempty"`
}

// Notifier pushes an event to every open connection of a user.
// Users without connections are skipped without error.
type Notifier interface {
	Notify(ctx context.Context, userID int64, event Event) error
}

// ChatService is the messaging behaviour reachable from a socket
type ChatService interface {
	SendMessage(ctx context.Context, senderID int64, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	MarkRead(ctx context.Context, userID, otherID int64) (int64, error)
}
