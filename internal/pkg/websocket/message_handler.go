package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

const frameTimeout = 5 * time.Second

// MessageHandler turns inbound frames into messaging calls.
// Successful sends are pushed by the messaging service itself; only rejections are answered here.
type MessageHandler struct {
	chat   ChatService
	logger zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(chat ChatService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{chat: chat, logger: logger}
}

// HandleFrame processes one frame received on c
func (h *MessageHandler) HandleFrame(ctx context.Context, c *Client, raw []byte) {
	ctx, cancel := context.WithTimeout(ctx, frameTimeout)
	defer cancel()

	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		h.reject(c, "", "malformed frame")
		return
	}

	switch frame.Action {
	case ActionSendMessage:
		req := &dto.SendMessageRequest{ReceiverID: frame.ReceiverID, Text: frame.Text}
		if _, err := h.chat.SendMessage(ctx, c.userID, req); err != nil {
			h.logger.Debug().Err(err).Int64("userID", c.userID).Int64("receiverID", frame.ReceiverID).Msg("Socket send rejected")
			h.reject(c, frame.Action, apperrors.Message(err, "could not send message"))
		}
	case ActionMarkAsRead:
		if frame.OtherID <= 0 {
			h.reject(c, frame.Action, "otherId is required")
			return
		}
		if _, err := h.chat.MarkRead(ctx, c.userID, frame.OtherID); err != nil {
			h.logger.Debug().Err(err).Int64("userID", c.userID).Int64("otherID", frame.OtherID).Msg("Socket mark-read rejected")
			h.reject(c, frame.Action, apperrors.Message(err, "could not mark messages as read"))
		}
	default:
		h.reject(c, frame.Action, "unknown action")
	}
}

func (h *MessageHandler) reject(c *Client, action, message string) {
	event, err := NewEvent(EventError, ErrorPayload{Action: action, Message: message})
	if err != nil {
		return
	}
	c.push(event)
}
