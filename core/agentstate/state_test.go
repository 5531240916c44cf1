package agentstate

import (
	"sync"
	"testing"

	"github.com/overmind-ai/overmind/core/workflow"
)

func TestSnapshotIsCopy(t *testing.T) {
	st := New()
	snap := st.Snapshot()
	if snap.Status != workflow.AgentIdle {
		t.Fatalf("initial status = %q", snap.Status)
	}

	st.SetStatus(workflow.AgentExecuting, "Working on wf-1")
	if snap.Status != workflow.AgentIdle {
		t.Fatalf("snapshot mutated by later writes")
	}
	snap = st.Snapshot()
	if snap.Status != workflow.AgentExecuting || snap.CurrentTask != "Working on wf-1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.LastActivity.IsZero() {
		t.Fatalf("LastActivity not set")
	}
}

func TestCounters(t *testing.T) {
	st := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.IncActive()
			st.IncDecisions()
			st.IncCompleted()
		}()
	}
	wg.Wait()

	snap := st.Snapshot()
	if snap.ActiveWorkflows != 10 || snap.DecisionsMade != 10 || snap.CompletedToday != 10 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
}
