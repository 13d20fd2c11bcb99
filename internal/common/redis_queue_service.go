package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/clanledger/internal/logging"
)

// ActivityQueueItem is one chat message waiting to be scored.
type ActivityQueueItem struct {
	UserID       int64     `json:"user_id"`
	Content      string    `json:"content"`
	ChannelID    *int64    `json:"channel_id,omitempty"`
	HasBonusRole bool      `json:"has_bonus_role"`
	RoleNames    []string  `json:"role_names,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
}

// RedisQueueService provides queue functionality using Redis Streams
type RedisQueueService struct {
	client *redis.Client
	stream string
	group  string
}

// NewRedisQueueService creates a queue over stream consumed by group.
func NewRedisQueueService(client *redis.Client, stream, group string) *RedisQueueService {
	return &RedisQueueService{
		client: client,
		stream: stream,
		group:  group,
	}
}

func (s *RedisQueueService) Stream() string { return s.stream }

// Enqueue adds an item to the stream
// XADD stream * data <json>
func (s *RedisQueueService) Enqueue(ctx context.Context, item *ActivityQueueItem) (string, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("failed to marshal activity item: %w", err)
	}

	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add to stream: %w", err)
	}
	return id, nil
}

// Dequeue reads one new item for consumer, blocking up to blockTime.
// Returns (nil, "", nil) when nothing arrived in time.
func (s *RedisQueueService) Dequeue(ctx context.Context, consumer string, blockTime time.Duration) (*ActivityQueueItem, string, error) {
	// XREADGROUP GROUP group consumer BLOCK milliseconds COUNT 1 STREAMS stream >
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: consumer,
		Streams:  []string{s.stream, ">"},
		Count:    1,
		Block:    blockTime,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]
	item, err := decodeActivity(msg)
	if err != nil {
		// Poison message: ack it so it is not redelivered forever.
		_ = s.Ack(ctx, msg.ID)
		return nil, "", err
	}
	return item, msg.ID, nil
}

// Ack acknowledges successful processing of a message
func (s *RedisQueueService) Ack(ctx context.Context, messageID string) error {
	return s.client.XAck(ctx, s.stream, s.group, messageID).Err()
}

// CreateConsumerGroup creates the consumer group if it doesn't exist
func (s *RedisQueueService) CreateConsumerGroup(ctx context.Context) error {
	// XGROUP CREATE stream group 0 MKSTREAM
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// Length returns the number of entries in the stream
func (s *RedisQueueService) Length(ctx context.Context) (int64, error) {
	length, err := s.client.XLen(ctx, s.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}

// PendingCount returns the number of delivered but unacknowledged messages
func (s *RedisQueueService) PendingCount(ctx context.Context) (int64, error) {
	pending, err := s.client.XPending(ctx, s.stream, s.group).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return pending.Count, nil
}

// ClaimStale takes over messages idle for at least minIdle (likely from dead workers)
func (s *RedisQueueService) ClaimStale(ctx context.Context, consumer string, minIdle time.Duration) ([]*ActivityQueueItem, []string, error) {
	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: s.stream,
		Group:  s.group,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pending messages: %w", err)
	}

	var staleIDs []string
	for _, p := range pending {
		if p.Idle >= minIdle {
			staleIDs = append(staleIDs, p.ID)
		}
	}
	if len(staleIDs) == 0 {
		return nil, nil, nil
	}

	messages, err := s.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   s.stream,
		Group:    s.group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: staleIDs,
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim stale messages: %w", err)
	}

	var items []*ActivityQueueItem
	var ids []string
	for _, msg := range messages {
		item, err := decodeActivity(msg)
		if err != nil {
			logging.Warn("Dropping undecodable activity message", "id", msg.ID, "error", err)
			_ = s.Ack(ctx, msg.ID)
			continue
		}
		items = append(items, item)
		ids = append(ids, msg.ID)
	}
	return items, ids, nil
}

func decodeActivity(msg redis.XMessage) (*ActivityQueueItem, error) {
	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid message format: data field missing")
	}
	var item ActivityQueueItem
	if err := json.Unmarshal([]byte(dataStr), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity item: %w", err)
	}
	return &item, nil
}
