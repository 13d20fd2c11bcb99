package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/clanledger/internal/logging"
)

// LedgerEvent is a notification for the chat layer (milestones, weekly summaries).
type LedgerEvent struct {
	Type       string         `json:"type"`
	UserID     int64          `json:"user_id,omitempty"`
	ClanName   string         `json:"clan_name,omitempty"`
	ChannelID  *int64         `json:"channel_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventPublisher delivers ledger events. Publishing is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}

// RedisEventStream publishes ledger events to a Redis Stream
type RedisEventStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

var _ EventPublisher = (*RedisEventStream)(nil)

// NewRedisEventStream creates a publisher that keeps roughly maxLen entries in the stream
func NewRedisEventStream(client *redis.Client, stream string, maxLen int64) *RedisEventStream {
	return &RedisEventStream{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Publish adds the event to the stream
// XADD stream MAXLEN ~ n * data <json>
func (s *RedisEventStream) Publish(ctx context.Context, event LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type": event.Type,
			"data": string(data),
		},
	}

	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}
	return nil
}

// Length returns the number of entries currently in the stream
func (s *RedisEventStream) Length(ctx context.Context) (int64, error) {
	length, err := s.client.XLen(ctx, s.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get stream length: %w", err)
	}
	return length, nil
}

// LogEventPublisher writes events to the structured log. Used when no stream is configured.
type LogEventPublisher struct{}

var _ EventPublisher = LogEventPublisher{}

func (LogEventPublisher) Publish(_ context.Context, event LedgerEvent) error {
	logging.Info("Ledger event",
		"type", event.Type,
		"user_id", event.UserID,
		"clan", event.ClanName,
		"payload", event.Payload,
	)
	return nil
}
