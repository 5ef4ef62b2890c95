package dto

import (
	"time"

	"github.com/yigit/gradebook/internal/app/models"
)

// SentTimeLayout is the clock format used for message timestamps shown in chat
const SentTimeLayout = "15:04"

// SendMessageRequest represents a new direct message
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiverId" binding:"required,min=1" example:"12"`
	Text       string `json:"text" binding:"required" example:"Please bring your notebook tomorrow"`
}

// MessageResponse is one message as seen by a conversation participant
type MessageResponse struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
	SentTime   string    `json:"sentTime" example:"14:05"`
	IsRead     bool      `json:"isRead"`
	Mine       bool      `json:"mine"`
}

// ContactResponse summarises the conversation with one other user
type ContactResponse struct {
	UserID        int64     `json:"userId"`
	Name          string    `json:"name"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	LastTime      string    `json:"lastTime" example:"09:30"`
	UnreadCount   int       `json:"unreadCount"`
}

// ConversationResponse is the full thread with one other user, oldest first
type ConversationResponse struct {
	With     RecipientResponse `json:"with"`
	Messages []MessageResponse `json:"messages"`
}

// RecipientResponse is a user that can be messaged
type RecipientResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// UnreadCountResponse carries the number of unread incoming messages
type UnreadCountResponse struct {
	Count int `json:"count" example:"3"`
}

// MarkReadResponse reports how many messages changed to read
type MarkReadResponse struct {
	Updated int64 `json:"updated" example:"2"`
}

// ToMessageResponse converts a stored message for the given viewer
func ToMessageResponse(m *models.Message, viewerID int64) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		SentAt:     m.SentAt,
		SentTime:   m.SentAt.Format(SentTimeLayout),
		IsRead:     m.IsRead,
		Mine:       m.SenderID == viewerID,
	}
}

// ToRecipientResponse converts a user into a messaging recipient
func ToRecipientResponse(u *models.User) RecipientResponse {
	return RecipientResponse{ID: u.ID, Name: u.FullName(), Role: string(u.RoleType)}
}
