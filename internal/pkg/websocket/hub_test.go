package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/metrics"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop(), metrics.New())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub, userID int64, frames *MessageHandler) *Client {
	t.Helper()
	c := newClient(hub, nil, userID, frames, zerolog.Nop())
	before := hub.ConnectionCount(userID)
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) == before+1 }, time.Second, 5*time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func messageEvent(t *testing.T, text string) Event {
	t.Helper()
	ev, err := NewEvent(EventMessage, MessagePayload{ID: 1, SenderID: 2, ReceiverID: 3, Text: text, SentTime: "10:00"})
	require.NoError(t, err)
	return ev
}

func TestHub_DeliverToEveryConnection(t *testing.T) {
	hub := startHub(t)
	phone := connect(t, hub, 3, nil)
	laptop := connect(t, hub, 3, nil)
	other := connect(t, hub, 4, nil)

	n := hub.Deliver(3, messageEvent(t, "hi"))
	assert.Equal(t, 2, n)

	for _, c := range []*Client{phone, laptop} {
		ev := receive(t, c)
		assert.Equal(t, EventMessage, ev.Type)
		var p MessagePayload
		require.NoError(t, json.Unmarshal(ev.Data, &p))
		assert.Equal(t, "hi", p.Text)
	}
	assert.Empty(t, other.send)
}

func TestHub_DropWithoutConnections(t *testing.T) {
	hub := startHub(t)
	assert.Equal(t, 0, hub.Deliver(99, messageEvent(t, "nobody home")))
	assert.NoError(t, hub.Notify(context.Background(), 99, messageEvent(t, "still fine")))
	assert.False(t, hub.IsOnline(99))
}

func TestHub_Unregister(t *testing.T) {
	hub := startHub(t)
	c := connect(t, hub, 5, nil)

	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.ConnectionCount(5) == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Deliver(5, messageEvent(t, "gone")))
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := startHub(t)
	connect(t, hub, 6, nil)

	for i := 0; i < sendBufferSize; i++ {
		require.Equal(t, 1, hub.Deliver(6, messageEvent(t, "fill")))
	}
	assert.Equal(t, 0, hub.Deliver(6, messageEvent(t, "overflow")))
	require.Eventually(t, func() bool { return hub.ConnectionCount(6) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesConnections(t *testing.T) {
	hub := NewHub(zerolog.Nop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	c := connect(t, hub, 1, nil)

	cancel()
	require.Eventually(t, func() bool { return hub.ConnectionCount(1) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)
	assert.False(t, hub.Register(newClient(hub, nil, 1, nil, zerolog.Nop())))
}

type stubChat struct {
	sent     []dto.SendMessageRequest
	sendErr  error
	readFrom []int64
}

func (s *stubChat) SendMessage(_ context.Context, _ int64, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.sent = append(s.sent, *req)
	return &dto.MessageResponse{ID: 1, Text: req.Text}, nil
}

func (s *stubChat) MarkRead(_ context.Context, _ int64, otherID int64) (int64, error) {
	s.readFrom = append(s.readFrom, otherID)
	return 1, nil
}

func TestMessageHandler_Frames(t *testing.T) {
	hub := startHub(t)

	t.Run("send message", func(t *testing.T) {
		chat := &stubChat{}
		c := connect(t, hub, 10, NewMessageHandler(chat, zerolog.Nop()))
		c.frames.HandleFrame(context.Background(), c, []byte(`{"action":"sendMessage","receiverId":11,"text":"hello"}`))
		require.Len(t, chat.sent, 1)
		assert.Equal(t, int64(11), chat.sent[0].ReceiverID)
		assert.Empty(t, c.send)
	})

	t.Run("mark as read pushes nothing", func(t *testing.T) {
		chat := &stubChat{}
		c := connect(t, hub, 12, NewMessageHandler(chat, zerolog.Nop()))
		c.frames.HandleFrame(context.Background(), c, []byte(`{"action":"markAsRead","otherId":10}`))
		assert.Equal(t, []int64{10}, chat.readFrom)
		assert.Empty(t, c.send)
	})

	t.Run("rejection answers only the caller", func(t *testing.T) {
		chat := &stubChat{sendErr: apperrors.NewValidationError("message text must not be empty")}
		c := connect(t, hub, 13, NewMessageHandler(chat, zerolog.Nop()))
		sibling := connect(t, hub, 13, nil)

		c.frames.HandleFrame(context.Background(), c, []byte(`{"action":"sendMessage","receiverId":11,"text":" "}`))
		ev := receive(t, c)
		assert.Equal(t, EventError, ev.Type)
		var p ErrorPayload
		require.NoError(t, json.Unmarshal(ev.Data, &p))
		assert.Equal(t, "message text must not be empty", p.Message)
		assert.Empty(t, sibling.send)
	})

	t.Run("malformed and unknown frames", func(t *testing.T) {
		chat := &stubChat{sendErr: errors.New("unused")}
		c := connect(t, hub, 14, NewMessageHandler(chat, zerolog.Nop()))

		c.frames.HandleFrame(context.Background(), c, []byte(`{not json`))
		assert.Equal(t, EventError, receive(t, c).Type)

		c.frames.HandleFrame(context.Background(), c, []byte(`{"action":"dance"}`))
		assert.Equal(t, EventError, receive(t, c).Type)

		c.frames.HandleFrame(context.Background(), c, []byte(`{"action":"markAsRead"}`))
		assert.Equal(t, EventError, receive(t, c).Type)
	})
}

func TestRedisBridge_HandleDeliversLocally(t *testing.T) {
	hub := startHub(t)
	c := connect(t, hub, 20, nil)
	bridge := NewRedisBridge(nil, "test", hub, zerolog.Nop())

	data, err := json.Marshal(envelope{UserID: 20, Event: messageEvent(t, "across instances")})
	require.NoError(t, err)
	bridge.handle(string(data))
	assert.Equal(t, EventMessage, receive(t, c).Type)

	bridge.handle("garbage")
	assert.Empty(t, c.send)
}
