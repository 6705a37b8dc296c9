package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/worldforge/pkg/bridge"
)

const DefaultCommandChannel = "worldforge:commands"

// RedisTransport publishes commands to a Redis pub/sub channel for an
// engine peer that subscribes to it. The host and port given to Connect
// are ignored; the client is already configured.
type RedisTransport struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

var _ bridge.Transport = (*RedisTransport)(nil)

func NewRedisTransport(client *redis.Client, channel string, logger *slog.Logger) *RedisTransport {
	if channel == "" {
		channel = DefaultCommandChannel
	}
	return &RedisTransport{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (t *RedisTransport) Channel() string {
	return t.channel
}

// Connect pings Redis.
func (t *RedisTransport) Connect(ctx context.Context, _ string, _ int) (bool, error) {
	if err := t.client.Ping(ctx).Err(); err != nil {
		return false, fmt.Errorf("redis ping failed: %w", err)
	}
	t.logger.Debug("Redis ping successful", "channel", t.channel)
	return true, nil
}

// Deliver publishes cmd. It succeeds only when at least one subscriber
// received the message.
func (t *RedisTransport) Deliver(ctx context.Context, cmd bridge.Command) (bool, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return false, fmt.Errorf("failed to marshal command: %w", err)
	}

	receivers, err := t.client.Publish(ctx, t.channel, data).Result()
	if err != nil {
		return false, fmt.Errorf("failed to publish command: %w", err)
	}

	t.logger.Debug("Published command", "type", cmd.Type, "channel", t.channel, "receivers", receivers)
	return receivers > 0, nil
}

// Listen subscribes to the channel and calls fn for each command until
// ctx is done. ready, if non-nil, is closed once the subscription is
// active.
func (t *RedisTransport) Listen(ctx context.Context, ready chan<- struct{}, fn func(bridge.Command)) error {
	pubsub := t.client.Subscribe(ctx, t.channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			t.logger.Error("Failed to close pubsub", "error", err)
		}
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", t.channel, err)
	}
	t.logger.Info("Subscribed to command channel", "channel", t.channel)
	if ready != nil {
		close(ready)
	}

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var cmd bridge.Command
			if err := json.Unmarshal([]byte(msg.Payload), &cmd); err != nil {
				t.logger.Error("Failed to unmarshal command", "error", err, "payload", msg.Payload)
				continue
			}
			fn(cmd)
		}
	}
}
