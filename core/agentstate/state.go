// Package agentstate tracks the live status of the agent control loop.
package agentstate

import (
	"sync"
	"time"

	"github.com/overmind-ai/overmind/core/workflow"
)

// State is the in-memory view of what the agent is doing right now.
// The engine is the only writer; gateway reads take snapshots.
type State struct {
	mu sync.Mutex
	s  workflow.AgentState
}

// New returns an idle agent state.
func New() *State {
	return &State{
		s: workflow.AgentState{
			Status:       workflow.AgentIdle,
			LastActivity: time.Now().UTC(),
		},
	}
}

// Snapshot returns a copy of the current state.
func (st *State) Snapshot() workflow.AgentState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// SetStatus records the agent's activity phase and touches LastActivity.
func (st *State) SetStatus(status workflow.AgentStatus, task string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Status = status
	st.s.CurrentTask = task
	st.s.LastActivity = time.Now().UTC()
}

// IncActive counts one workflow admitted to running. Like the other
// counters it only goes up for the lifetime of the run; the live running
// count is served by the store and the metrics gauge.
func (st *State) IncActive() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ActiveWorkflows++
}

// IncDecisions counts one scheduling decision.
func (st *State) IncDecisions() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.DecisionsMade++
}

// IncCompleted counts one workflow driven to completion.
func (st *State) IncCompleted() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.CompletedToday++
}
