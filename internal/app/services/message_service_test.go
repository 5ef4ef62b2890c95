package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/websocket"
)

func newMessageFixture() (*messageServiceImpl, *fakeMessages, *fakeNotifier) {
	svc, msgs, notifier, _ := newMessageFixtureWithUsers()
	return svc, msgs, notifier
}

func newMessageFixtureWithUsers() (*messageServiceImpl, *fakeMessages, *fakeNotifier, *fakeUsers) {
	msgs := &fakeMessages{names: map[int64]string{1: "Maria Ivanova", 2: "Ana Petrova", 3: "Boris Ivanov"}}
	notifier := &fakeNotifier{}
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, FirstName: "Maria", LastName: "Ivanova", RoleType: models.RoleTeacher},
		2: {ID: 2, FirstName: "Ana", LastName: "Petrova", RoleType: models.RoleStudent},
		3: {ID: 3, FirstName: "Boris", LastName: "Ivanov", RoleType: models.RoleStudent},
	}}
	svc := NewMessageService(msgs, users, notifier, zerolog.Nop()).(*messageServiceImpl)
	return svc, msgs, notifier, users
}

func TestSendMessage_RoundTrip(t *testing.T) {
	svc, _, notifier := newMessageFixture()
	ctx := context.Background()

	sent, err := svc.SendMessage(ctx, 1, &dto.SendMessageRequest{ReceiverID: 2, Text: "  Hello  "})
	require.NoError(t, err)
	assert.Equal(t, "Hello", sent.Text)
	assert.True(t, sent.Mine)
	assert.Equal(t, "14:05", sent.SentTime)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, int64(2), notifier.sent[0].userID, "receiver is notified first")
	assert.Equal(t, int64(1), notifier.sent[1].userID)
	assert.Equal(t, websocket.EventMessage, notifier.sent[0].event.Type)

	var payload websocket.MessagePayload
	require.NoError(t, json.Unmarshal(notifier.sent[0].event.Data, &payload))
	assert.Equal(t, "Hello", payload.Text)
	assert.Equal(t, int64(1), payload.SenderID)

	unread, err := svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	conv, err := svc.GetConversation(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.False(t, conv.Messages[0].Mine)
	assert.False(t, conv.Messages[0].IsRead, "reading a conversation does not mark it read")
	assert.Equal(t, "Maria Ivanova", conv.With.Name)
}

func TestSendMessage_ToSelfNotifiesOnce(t *testing.T) {
	svc, _, notifier := newMessageFixture()

	_, err := svc.SendMessage(context.Background(), 1, &dto.SendMessageRequest{ReceiverID: 1, Text: "note to self"})
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(1), notifier.sent[0].userID)
}

func TestSendMessage_Validation(t *testing.T) {
	tests := []struct {
		name   string
		sender int64
		req    dto.SendMessageRequest
		target error
	}{
		{name: "blank text", sender: 1, req: dto.SendMessageRequest{ReceiverID: 2, Text: "   "}, target: apperrors.ErrValidationFailed},
		{name: "too long", sender: 1, req: dto.SendMessageRequest{ReceiverID: 2, Text: strings.Repeat("я", 2001)}, target: apperrors.ErrValidationFailed},
		{name: "unknown receiver", sender: 1, req: dto.SendMessageRequest{ReceiverID: 99, Text: "hi"}, target: apperrors.ErrValidationFailed},
		{name: "unknown sender", sender: 98, req: dto.SendMessageRequest{ReceiverID: 2, Text: "hi"}, target: apperrors.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, msgs, notifier := newMessageFixture()
			_, err := svc.SendMessage(context.Background(), tt.sender, &tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Empty(t, msgs.rows)
			assert.Empty(t, notifier.sent)
		})
	}
}

func TestSendMessage_UserLookupFailurePassesThrough(t *testing.T) {
	svc, msgs, notifier, users := newMessageFixtureWithUsers()
	users.err = errors.New("connection reset")

	_, err := svc.SendMessage(context.Background(), 1, &dto.SendMessageRequest{ReceiverID: 2, Text: "hi"})
	require.Error(t, err)
	assert.EqualError(t, err, "connection reset")
	assert.False(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	assert.Empty(t, msgs.rows)
	assert.Empty(t, notifier.sent)
}

func TestListContacts(t *testing.T) {
	type send struct {
		from, to int64
		text     string
	}
	type contact struct {
		userID   int64
		name     string
		last     string
		lastTime string
		unread   int
	}

	tests := []struct {
		name     string
		sends    []send
		readFrom []int64
		want     []contact
	}{
		{
			name: "no messages",
			want: []contact{},
		},
		{
			name: "grouped by other party, most recent first",
			sends: []send{
				{from: 2, to: 1, text: "question about homework"},
				{from: 3, to: 1, text: "I will be late"},
				{from: 1, to: 2, text: "see page 12"},
				{from: 2, to: 1, text: "thanks"},
			},
			want: []contact{
				{userID: 2, name: "Ana Petrova", last: "thanks", lastTime: "14:08", unread: 2},
				{userID: 3, name: "Boris Ivanov", last: "I will be late", lastTime: "14:06", unread: 1},
			},
		},
		{
			name: "own messages are never unread",
			sends: []send{
				{from: 1, to: 3, text: "reminder"},
				{from: 1, to: 3, text: "bring the form"},
			},
			want: []contact{
				{userID: 3, name: "Boris Ivanov", last: "bring the form", lastTime: "14:06", unread: 0},
			},
		},
		{
			name: "reading one thread leaves the other unread",
			sends: []send{
				{from: 2, to: 1, text: "hello"},
				{from: 3, to: 1, text: "hi"},
				{from: 3, to: 1, text: "are you there"},
			},
			readFrom: []int64{3},
			want: []contact{
				{userID: 3, name: "Boris Ivanov", last: "are you there", lastTime: "14:07", unread: 0},
				{userID: 2, name: "Ana Petrova", last: "hello", lastTime: "14:05", unread: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newMessageFixture()
			ctx := context.Background()
			for _, m := range tt.sends {
				_, err := svc.SendMessage(ctx, m.from, &dto.SendMessageRequest{ReceiverID: m.to, Text: m.text})
				require.NoError(t, err)
			}
			for _, other := range tt.readFrom {
				_, err := svc.MarkRead(ctx, 1, other)
				require.NoError(t, err)
			}

			contacts, err := svc.ListContacts(ctx, 1)
			require.NoError(t, err)

			got := make([]contact, 0, len(contacts))
			sum := 0
			for _, c := range contacts {
				got = append(got, contact{userID: c.UserID, name: c.Name, last: c.LastMessage, lastTime: c.LastTime, unread: c.UnreadCount})
				sum += c.UnreadCount
			}
			assert.Equal(t, tt.want, got)

			unread, err := svc.UnreadCount(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, unread, sum, "contact unread counts add up to the unread total")
		})
	}
}

func TestListContacts_UnreadMatchesAfterMarkRead(t *testing.T) {
	svc, _, _ := newMessageFixture()
	ctx := context.Background()
	for _, from := range []int64{2, 3, 2} {
		_, err := svc.SendMessage(ctx, from, &dto.SendMessageRequest{ReceiverID: 1, Text: "ping"})
		require.NoError(t, err)
	}

	totals := func() (int, int) {
		contacts, err := svc.ListContacts(ctx, 1)
		require.NoError(t, err)
		sum := 0
		for _, c := range contacts {
			sum += c.UnreadCount
		}
		unread, err := svc.UnreadCount(ctx, 1)
		require.NoError(t, err)
		return sum, unread
	}

	sum, unread := totals()
	assert.Equal(t, 3, unread)
	assert.Equal(t, unread, sum)

	_, err := svc.MarkRead(ctx, 1, 2)
	require.NoError(t, err)
	sum, unread = totals()
	assert.Equal(t, 1, unread)
	assert.Equal(t, unread, sum)

	_, err = svc.MarkRead(ctx, 1, 3)
	require.NoError(t, err)
	sum, unread = totals()
	assert.Zero(t, unread)
	assert.Zero(t, sum)
}

func TestSendMessage_MaxLengthAccepted(t *testing.T) {
	svc, msgs, _ := newMessageFixture()
	_, err := svc.SendMessage(context.Background(), 1, &dto.SendMessageRequest{ReceiverID: 2, Text: strings.Repeat("я", 2000)})
	require.NoError(t, err)
	assert.Len(t, msgs.rows, 1)
}

func TestMarkRead_Idempotent(t *testing.T) {
	svc, _, _ := newMessageFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.SendMessage(ctx, 1, &dto.SendMessageRequest{ReceiverID: 2, Text: "ping"})
		require.NoError(t, err)
	}

	n, err := svc.MarkRead(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.MarkRead(ctx, 2, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	// the sender's own messages are untouched
	n, err = svc.MarkRead(ctx, 1, 2)
	require.NoError(t, err)
	assert.Zero(t, n)

	unread, err := svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestListRecipients_ExcludesCaller(t *testing.T) {
	svc, _, _ := newMessageFixture()
	out, err := svc.ListRecipients(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, "STUDENT", out[0].Role)
}
