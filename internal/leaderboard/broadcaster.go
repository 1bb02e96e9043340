package leaderboard

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/rankerhq/ranker/pkg/http/ws"
)

// Broadcaster listens on the Redis Pub/Sub update channel and forwards
// events to all connected WebSocket clients. Running it through Redis
// instead of calling the hub directly keeps multi-instance deployments
// consistent: every instance sees every update.
type Broadcaster struct {
	redis   *redis.Client
	hub     *ws.Hub
	channel string
	logger  zerolog.Logger
}

// NewBroadcaster creates a Pub/Sub powered live update broadcaster.
func NewBroadcaster(rdb *redis.Client, hub *ws.Hub, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = "ranker:updates"
	}
	return &Broadcaster{
		redis:   rdb,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "broadcaster").Logger(),
	}
}

// Run subscribes to the update channel and blocks until the context is
// cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	var msg ws.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode live update payload")
		return
	}
	if msg.Type == "" {
		b.logger.Warn().Msg("dropping untyped live update")
		return
	}
	if err := b.hub.BroadcastAll(msg); err != nil {
		b.logger.Warn().Err(err).Str("type", msg.Type).Msg("failed to broadcast live update")
	}
}
