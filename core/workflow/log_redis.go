package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/overmind-ai/overmind/core/infra/redisutil"
)

const (
	logMaxEntries = 1000

	// SubjectLog is the bus subject decision-log entries are mirrored on.
	SubjectLog = "agent.events.log"
)

// EventPublisher mirrors log entries onto the event bus for live observers.
type EventPublisher interface {
	Publish(subject string, v any) error
}

// RedisLogStore is an append-only decision log backed by a capped Redis
// list. Entries are never mutated or deleted by the engine.
type RedisLogStore struct {
	client *redis.Client
	bus    EventPublisher
}

// NewRedisLogStore connects a log store to Redis.
func NewRedisLogStore(url string) (*RedisLogStore, error) {
	if url == "" {
		url = defaultRedisURL
	}
	client, err := redisutil.NewClient(url)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisLogStore{client: client}, nil
}

// NewRedisLogStoreFromClient wraps an existing Redis client, which the
// caller remains responsible for closing.
func NewRedisLogStoreFromClient(client *redis.Client) *RedisLogStore {
	return &RedisLogStore{client: client}
}

// WithBus mirrors appended entries onto the event bus, fire-and-forget.
func (s *RedisLogStore) WithBus(bus EventPublisher) *RedisLogStore {
	s.bus = bus
	return s
}

// Close closes the underlying Redis client.
func (s *RedisLogStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Append records an entry. Missing ID/timestamp are filled in.
func (s *RedisLogStore) Append(ctx context.Context, entry LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, logKey(), data)
	pipe.LTrim(ctx, logKey(), 0, logMaxEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if s.bus != nil {
		_ = s.bus.Publish(SubjectLog, entry)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *RedisLogStore) Recent(ctx context.Context, limit int64) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	raw, err := s.client.LRange(ctx, logKey(), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]LogEntry, 0, len(raw))
	for _, item := range raw {
		var entry LogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func logKey() string {
	return "agent:logs"
}
