package workflow

import (
	"context"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

type capturePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *capturePublisher) Publish(subject string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func newTestLogStore(t *testing.T) *RedisLogStore {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("miniredis unavailable: %v", err)
	}
	t.Cleanup(srv.Close)
	store, err := NewRedisLogStore("redis://" + srv.Addr())
	if err != nil {
		t.Fatalf("log store init: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLogAppendAndRecent(t *testing.T) {
	store := newTestLogStore(t)
	ctx := context.Background()

	idx := 1
	entries := []LogEntry{
		{Action: LogStarted, WorkflowID: "wf-1", Detail: map[string]any{"priority": 5}},
		{Action: LogExecuting, WorkflowID: "wf-1", StepIndex: &idx},
		{Action: LogCompleted, WorkflowID: "wf-1", StepIndex: &idx},
	}
	for _, e := range entries {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
	// Newest first.
	if recent[0].Action != LogCompleted || recent[2].Action != LogStarted {
		t.Fatalf("unexpected order: %+v", recent)
	}
	for _, e := range recent {
		if e.ID == "" || e.Timestamp.IsZero() {
			t.Fatalf("entry missing id/timestamp: %+v", e)
		}
	}
}

func TestLogMirroredToBus(t *testing.T) {
	store := newTestLogStore(t)
	pub := &capturePublisher{}
	store.WithBus(pub)

	if err := store.Append(context.Background(), LogEntry{Action: LogDecision}); err != nil {
		t.Fatalf("append: %v", err)
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.subjects) != 1 || pub.subjects[0] != SubjectLog {
		t.Fatalf("expected publish on %s, got %v", SubjectLog, pub.subjects)
	}
}
