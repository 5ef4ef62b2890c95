package models

import "time"

// Message is a directed text message between two users.
// Only IsRead changes after the message is stored.
type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   int64     `json:"senderId" db:"sender_id"`
	ReceiverID int64     `json:"receiverId" db:"receiver_id"`
	Text       string    `json:"text" db:"text"`
	SentAt     time.Time `json:"sentAt" db:"sent_at"`
	IsRead     bool      `json:"isRead" db:"is_read"`

	SenderName   string `json:"senderName,omitempty" db:"-"`
	ReceiverName string `json:"receiverName,omitempty" db:"-"`
}

// OtherParty returns the id of the participant that is not userID
func (m *Message) OtherParty(userID int64) int64 {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// OtherPartyName returns the display name of the participant that is not userID
func (m *Message) OtherPartyName(userID int64) string {
	if m.SenderID == userID {
		return m.ReceiverName
	}
	return m.SenderName
}

// Contact is the latest exchange with one other user
type Contact struct {
	UserID   int64
	Name     string
	LastText string
	LastAt   time.Time
	Unread   int
}
