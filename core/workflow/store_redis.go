package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/overmind-ai/overmind/core/infra/redisutil"
)

const defaultRedisURL = "redis://localhost:6379"

// RedisStore persists workflows as JSON documents with status indexes.
// All mutations are scoped to a single workflow; correctness relies on a
// single agent engine writing to a given store (single-writer discipline).
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(url string) (*RedisStore, error) {
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

// Save persists a new or updated workflow and maintains its indexes.
func (s *RedisStore) Save(ctx context.Context, wf *Workflow) error {
	if wf == nil || wf.ID == "" {
		return fmt.Errorf("workflow id required")
	}
	now := time.Now().UTC()
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = now
	}
	if wf.Status == "" {
		wf.Status = StatusPending
	}
	if wf.Results == nil {
		wf.Results = map[int]StepResult{}
	}

	prevStatus := Status("")
	if data, err := s.client.Get(ctx, workflowKey(wf.ID)).Bytes(); err == nil {
		var prev Workflow
		if err := json.Unmarshal(data, &prev); err == nil {
			prevStatus = prev.Status
		}
	}

	payload, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, workflowKey(wf.ID), payload, 0)
	pipe.ZAdd(ctx, allIndexKey(), redis.Z{Score: float64(wf.CreatedAt.UnixNano()), Member: wf.ID})
	pipe.ZAdd(ctx, statusIndexKey(wf.Status), redis.Z{Score: float64(wf.CreatedAt.UnixNano()), Member: wf.ID})
	if prevStatus != "" && prevStatus != wf.Status {
		pipe.ZRem(ctx, statusIndexKey(prevStatus), wf.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Update overwrites an existing workflow document. The engine is the only
// writer for running workflows, so read-modify-write is race-free here.
func (s *RedisStore) Update(ctx context.Context, wf *Workflow) error {
	return s.Save(ctx, wf)
}

// Get fetches a workflow by ID. Returns redis.Nil when absent.
func (s *RedisStore) Get(ctx context.Context, id string) (*Workflow, error) {
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	data, err := s.client.Get(ctx, workflowKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var wf Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("unmarshal workflow: %w", err)
	}
	return &wf, nil
}

// SetStatus applies an external status override without touching the rest
// of the record. The agent loop simply observes the new status on its
// next read.
func (s *RedisStore) SetStatus(ctx context.Context, id string, status Status) error {
	wf, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	wf.Status = status
	return s.Save(ctx, wf)
}

// ListByStatus returns workflows with the given status. Pending workflows
// come back ordered by (priority desc, created_at asc), which is the
// admission order; other statuses carry no ordering guarantee.
func (s *RedisStore) ListByStatus(ctx context.Context, status Status) ([]*Workflow, error) {
	if status == "" {
		return nil, fmt.Errorf("status required")
	}
	ids, err := s.client.ZRange(ctx, statusIndexKey(status), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out, err := s.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}
	if status == StatusPending {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Priority != out[j].Priority {
				return out[i].Priority > out[j].Priority
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

// List returns recent workflows, newest first.
func (s *RedisStore) List(ctx context.Context, limit int64) ([]*Workflow, error) {
	if limit <= 0 {
		limit = 100
	}
	ids, err := s.client.ZRevRange(ctx, allIndexKey(), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, ids)
}

// Count returns the total number of workflows ever saved.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, allIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CountByStatus returns the number of workflows in a given status.
func (s *RedisStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	n, err := s.client.ZCard(ctx, statusIndexKey(status)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *RedisStore) fetch(ctx context.Context, ids []string) ([]*Workflow, error) {
	if len(ids) == 0 {
		return []*Workflow{}, nil
	}
	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(ids))
	for _, id := range ids {
		cmds[id] = pipe.Get(ctx, workflowKey(id))
	}
	// redis.Nil just means an index entry outlived its document; any
	// other failure must surface so the tick aborts instead of running
	// on partial data.
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	out := make([]*Workflow, 0, len(ids))
	for _, id := range ids {
		cmd := cmds[id]
		if cmd == nil {
			continue
		}
		data, err := cmd.Bytes()
		if err != nil {
			continue
		}
		var wf Workflow
		if err := json.Unmarshal(data, &wf); err != nil {
			continue
		}
		out = append(out, &wf)
	}
	return out, nil
}

func workflowKey(id string) string {
	return "agent:wf:" + id
}

func allIndexKey() string {
	return "agent:wf:index:all"
}

func statusIndexKey(status Status) string {
	return "agent:wf:index:status:" + string(status)
}
