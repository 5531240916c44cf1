package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/overmind-ai/overmind/core/infra/redisutil"
)

// RedisStore persists trends and template opportunities as JSON docs
// with recency indexes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects a trend store to Redis.
func NewRedisStore(url string) (*RedisStore, error) {
	if url == "" {
		url = "redis://localhost:6379"
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
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing Redis client, which the
// caller remains responsible for closing.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// SaveTrends persists a batch of trends, indexed by detection time.
func (s *RedisStore) SaveTrends(ctx context.Context, batch []Trend) error {
	if len(batch) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for _, trend := range batch {
		data, err := json.Marshal(trend)
		if err != nil {
			return fmt.Errorf("marshal trend: %w", err)
		}
		pipe.Set(ctx, trendKey(trend.ID), data, 0)
		pipe.ZAdd(ctx, trendIndexKey(), redis.Z{
			Score:  float64(trend.DetectedAt.UnixNano()),
			Member: trend.ID,
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RecentTrends returns trends newest first.
func (s *RedisStore) RecentTrends(ctx context.Context, limit int64) ([]Trend, error) {
	if limit <= 0 {
		limit = 20
	}
	ids, err := s.client.ZRevRange(ctx, trendIndexKey(), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Trend, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, trendKey(id)).Bytes()
		if err != nil {
			continue
		}
		var trend Trend
		if err := json.Unmarshal(data, &trend); err != nil {
			continue
		}
		out = append(out, trend)
	}
	return out, nil
}

// SaveOpportunities persists a batch of identified opportunities.
func (s *RedisStore) SaveOpportunities(ctx context.Context, batch []Opportunity) error {
	if len(batch) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for _, opp := range batch {
		data, err := json.Marshal(opp)
		if err != nil {
			return fmt.Errorf("marshal opportunity: %w", err)
		}
		pipe.Set(ctx, opportunityKey(opp.ID), data, 0)
		pipe.ZAdd(ctx, opportunityIndexKey(), redis.Z{
			Score:  float64(opp.CreatedAt.UnixNano()),
			Member: opp.ID,
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RecentOpportunities returns opportunities newest first.
func (s *RedisStore) RecentOpportunities(ctx context.Context, limit int64) ([]Opportunity, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.client.ZRevRange(ctx, opportunityIndexKey(), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Opportunity, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, opportunityKey(id)).Bytes()
		if err != nil {
			continue
		}
		var opp Opportunity
		if err := json.Unmarshal(data, &opp); err != nil {
			continue
		}
		out = append(out, opp)
	}
	return out, nil
}

// CountTrends returns the number of trends ever recorded.
func (s *RedisStore) CountTrends(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, trendIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CountOpportunities returns the number of opportunities ever recorded.
func (s *RedisStore) CountOpportunities(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, opportunityIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// GetOpportunity fetches one opportunity by ID. Returns redis.Nil when absent.
func (s *RedisStore) GetOpportunity(ctx context.Context, id string) (*Opportunity, error) {
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	data, err := s.client.Get(ctx, opportunityKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var opp Opportunity
	if err := json.Unmarshal(data, &opp); err != nil {
		return nil, fmt.Errorf("unmarshal opportunity: %w", err)
	}
	return &opp, nil
}

func trendKey(id string) string {
	return "agent:trend:" + id
}

func trendIndexKey() string {
	return "agent:trend:index"
}

func opportunityKey(id string) string {
	return "agent:opp:" + id
}

func opportunityIndexKey() string {
	return "agent:opp:index"
}
