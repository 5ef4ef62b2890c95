package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/dberrors"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ IMessageRepository = (*MessageRepository)(nil)

// Create inserts a message and fills its id and send time
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query, args, err := r.sb.Insert("messages").
		Columns("sender_id", "receiver_id", "text").
		Values(msg.SenderID, msg.ReceiverID, msg.Text).
		Suffix("RETURNING id, sent_at, is_read").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create message query: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&msg.ID, &msg.SentAt, &msg.IsRead); err != nil {
		return dberrors.Translate(err, "message")
	}
	return nil
}

// contactsQuery picks the latest message per other party. The unread predicate matches UnreadCount.
const contactsQuery = `
	WITH conv AS (
		SELECT id, text, sent_at,
			CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS other_id,
			ROW_NUMBER() OVER (
				PARTITION BY CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END
				ORDER BY sent_at DESC, id DESC
			) AS rn
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
	)
	SELECT conv.other_id, u.first_name || ' ' || u.last_name, conv.text, conv.sent_at,
		(SELECT COUNT(*) FROM messages m
			WHERE m.receiver_id = $1 AND m.sender_id = conv.other_id AND NOT m.is_read)
	FROM conv
	JOIN users u ON u.id = conv.other_id
	WHERE conv.rn = 1
	ORDER BY conv.sent_at DESC, conv.id DESC`

// Contacts lists the conversations of userID, most recent first
func (r *MessageRepository) Contacts(ctx context.Context, userID int64) ([]models.Contact, error) {
	rows, err := r.db.Query(ctx, contactsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.UserID, &c.Name, &c.LastText, &c.LastAt, &c.Unread); err != nil {
			return nil, fmt.Errorf("error scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Conversation returns every message between two users, oldest first
func (r *MessageRepository) Conversation(ctx context.Context, userID, otherID int64) ([]models.Message, error) {
	query, args, err := r.sb.Select("id", "sender_id", "receiver_id", "text", "sent_at", "is_read").
		From("messages").
		Where(squirrel.Or{
			squirrel.Eq{"sender_id": userID, "receiver_id": otherID},
			squirrel.Eq{"sender_id": otherID, "receiver_id": userID},
		}).
		OrderBy("sent_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build conversation query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading conversation: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.SentAt, &m.IsRead); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead flags every unread message from otherID to userID as read and returns how many changed
func (r *MessageRepository) MarkRead(ctx context.Context, userID, otherID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE messages SET is_read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`,
		userID, otherID)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UnreadCount counts unread messages addressed to userID
func (r *MessageRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND NOT is_read`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return n, nil
}
