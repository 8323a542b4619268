package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsdesk/backend/internal/domain/shared"
	"github.com/opsdesk/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "treasury.events."

// RedisNotifier forwards domain events to Redis pub/sub so external
// consumers (back-office UI, reporting) can react to treasury activity
// without polling. It subscribes to the in-process bus as a wildcard
// handler; delivery is fire-and-forget.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a notifier with its own Redis client
func NewRedisNotifier(cfg config.RedisConfig, logger *zap.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisNotifier{client: client, logger: logger}, nil
}

// NewRedisNotifierWithClient creates a notifier sharing an existing client
func NewRedisNotifierWithClient(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Handle publishes the event to its per-type channel
func (n *RedisNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
	}

	channel := ChannelFor(event.EventType())
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	n.logger.Debug("event forwarded to redis",
		zap.String("channel", channel),
		zap.String("event_id", event.EventID().String()),
	)
	return nil
}

// EventTypes returns nil: the notifier receives every event
func (n *RedisNotifier) EventTypes() []string {
	return nil
}

// Close closes the underlying Redis client
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// ChannelFor maps an event type to its pub/sub channel name
func ChannelFor(eventType string) string {
	return channelPrefix + eventType
}

var _ shared.EventHandler = (*RedisNotifier)(nil)
