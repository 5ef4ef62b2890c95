package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/validation"
	"github.com/yigit/gradebook/internal/pkg/websocket"
)

// MessageService handles direct messages between users
type MessageService interface {
	websocket.ChatService
	ListContacts(ctx context.Context, userID int64) ([]dto.ContactResponse, error)
	GetConversation(ctx context.Context, userID, otherID int64) (*dto.ConversationResponse, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	ListRecipients(ctx context.Context, userID int64) ([]dto.RecipientResponse, error)
}

type messageServiceImpl struct {
	messageRepo repositories.IMessageRepository
	userRepo    repositories.IUserRepository
	notifier    websocket.Notifier
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageRepo repositories.IMessageRepository,
	userRepo repositories.IUserRepository,
	notifier websocket.Notifier,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// SendMessage stores a message and pushes it to every connection of both participants
func (s *messageServiceImpl) SendMessage(ctx context.Context, senderID int64, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	text := strings.TrimSpace(req.Text)
	if !validation.ValidMessageText(text) {
		return nil, apperrors.NewValidationError("message text must be between 1 and %d characters", validation.MessageMaxRunes)
	}

	if err := s.requireUser(ctx, senderID, "sender"); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, req.ReceiverID, "receiver"); err != nil {
		return nil, err
	}

	msg := &models.Message{SenderID: senderID, ReceiverID: req.ReceiverID, Text: text}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.push(ctx, msg)

	resp := dto.ToMessageResponse(msg, senderID)
	return &resp, nil
}

// requireUser turns an unknown participant into a validation error; storage errors pass through
func (s *messageServiceImpl) requireUser(ctx context.Context, id int64, role string) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewValidationError("%s %d does not exist", role, id)
		}
		return err
	}
	return nil
}

// push notifies the receiver and then the sender. Delivery problems never fail the send.
func (s *messageServiceImpl) push(ctx context.Context, msg *models.Message) {
	event, err := websocket.NewEvent(websocket.EventMessage, websocket.MessagePayload{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Text:       msg.Text,
		SentTime:   msg.SentAt.Format(dto.SentTimeLayout),
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("messageID", msg.ID).Msg("Failed to encode message event")
		return
	}

	targets := []int64{msg.ReceiverID}
	if msg.SenderID != msg.ReceiverID {
		targets = append(targets, msg.SenderID)
	}
	for _, userID := range targets {
		if err := s.notifier.Notify(ctx, userID, event); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Int64("messageID", msg.ID).Msg("Failed to push message")
		}
	}
}

// MarkRead flags the messages otherID sent to userID as read
func (s *messageServiceImpl) MarkRead(ctx context.Context, userID, otherID int64) (int64, error) {
	n, err := s.messageRepo.MarkRead(ctx, userID, otherID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug().Int64("userID", userID).Int64("otherID", otherID).Int64("updated", n).Msg("Messages marked read")
	}
	return n, nil
}

// ListContacts summarises each conversation of userID, most recent first
func (s *messageServiceImpl) ListContacts(ctx context.Context, userID int64) ([]dto.ContactResponse, error) {
	contacts, err := s.messageRepo.Contacts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, dto.ContactResponse{
			UserID:        c.UserID,
			Name:          c.Name,
			LastMessage:   c.LastText,
			LastMessageAt: c.LastAt,
			LastTime:      c.LastAt.Format(dto.SentTimeLayout),
			UnreadCount:   c.Unread,
		})
	}
	return out, nil
}

// GetConversation returns the thread with otherID, oldest first. Reading does not mark messages read.
func (s *messageServiceImpl) GetConversation(ctx context.Context, userID, otherID int64) (*dto.ConversationResponse, error) {
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.Conversation(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConversationResponse{
		With:     dto.ToRecipientResponse(other),
		Messages: make([]dto.MessageResponse, 0, len(messages)),
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, dto.ToMessageResponse(&messages[i], userID))
	}
	return resp, nil
}

// UnreadCount counts unread messages addressed to userID
func (s *messageServiceImpl) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.messageRepo.UnreadCount(ctx, userID)
}

// ListRecipients lists everyone userID can start a conversation with
func (s *messageServiceImpl) ListRecipients(ctx context.Context, userID int64) ([]dto.RecipientResponse, error) {
	users, err := s.userRepo.ListExcept(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecipientResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.ToRecipientResponse(&users[i]))
	}
	return out, nil
}
