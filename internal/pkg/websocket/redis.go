package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// envelope is an event addressed to a user, as published between instances
type envelope struct {
	UserID int64 `json:"userId"`
	Event  Event `json:"event"`
}

// RedisBridge fans events out to every instance through a Redis channel.
// Each instance delivers to the connections it holds, so a user connected
// to several replicas receives the event on all of them.
type RedisBridge struct {
	client  redis.UniversalClient
	channel string
	hub     *Hub
	logger  zerolog.Logger
}

// NewRedisBridge creates a bridge publishing on channel and delivering into hub
func NewRedisBridge(client redis.UniversalClient, channel string, hub *Hub, logger zerolog.Logger) *RedisBridge {
	return &RedisBridge{client: client, channel: channel, hub: hub, logger: logger}
}

// Notify publishes the event. If Redis is unreachable the event is delivered locally only.
func (b *RedisBridge) Notify(ctx context.Context, userID int64, event Event) error {
	data, err := json.Marshal(envelope{UserID: userID, Event: event})
	if err != nil {
		return fmt.Errorf("failed to encode relay envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Warn().Err(err).Int64("userID", userID).Msg("Relay publish failed, delivering locally")
		b.hub.Deliver(userID, event)
	}
	return nil
}

// Run subscribes to the channel and delivers incoming events until ctx is cancelled
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info().Str("channel", b.channel).Msg("Relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *RedisBridge) handle(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.logger.Warn().Err(err).Msg("Discarding malformed relay envelope")
		return
	}
	if env.UserID <= 0 {
		return
	}
	b.hub.Deliver(env.UserID, env.Event)
}
