package workflow

import (
	"math"
	"time"
)

// StepKind identifies the kind of step in a workflow plan.
type StepKind string

const (
	KindMarketResearch   StepKind = "market_research"
	KindDesignPlanning   StepKind = "design_planning"
	KindTemplateCreation StepKind = "template_creation"
	KindQualityCheck     StepKind = "quality_check"
	KindListingCreation  StepKind = "listing_creation"
	KindRevenueTracking  StepKind = "revenue_tracking"
)

// Status captures the lifecycle of a workflow.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPaused    Status = "paused"
)

// AgentStatus captures what the agent loop is doing right now.
type AgentStatus string

const (
	AgentIdle      AgentStatus = "idle"
	AgentThinking  AgentStatus = "thinking"
	AgentExecuting AgentStatus = "executing"
)

// Step is one unit of work in a workflow plan. Steps are fixed at
// creation; completion is implied by an entry in Workflow.Results.
type Step struct {
	Kind          StepKind       `json:"type"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Tools         []string       `json:"tools,omitempty"`
	EstimatedTime int            `json:"estimated_time,omitempty"` // minutes
	Params        map[string]any `json:"params,omitempty"`
}

// StepResult is the payload a step handler returns. Failed results are
// recorded but never fail the workflow (see the agent engine).
type StepResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Workflow is the persisted record the agent engine drives to completion.
type Workflow struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Description         string             `json:"description,omitempty"`
	Type                string             `json:"type,omitempty"`
	Category            string             `json:"category,omitempty"`
	Steps               []Step             `json:"steps"`
	Status              Status             `json:"status"`
	Priority            int                `json:"priority"`
	TargetProfitability float64            `json:"target_profitability"`
	ActualProfitability float64            `json:"actual_profitability"`
	EstimatedRevenue    float64            `json:"estimated_revenue,omitempty"`
	ROIPerHour          float64            `json:"roi_per_hour,omitempty"`
	TimeInvestment      int                `json:"time_investment,omitempty"` // minutes
	OpportunityID       string             `json:"opportunity_id,omitempty"`
	Progress            int                `json:"progress"`
	CurrentStep         int                `json:"current_step"`
	Results             map[int]StepResult `json:"results"`
	CreatedAt           time.Time          `json:"created_at"`
	StartedAt           *time.Time         `json:"started_at,omitempty"`
	CompletedAt         *time.Time         `json:"completed_at,omitempty"`
}

// ComputeProgress derives the integer percentage for a step position.
// A workflow's Progress must always equal this for its CurrentStep.
func ComputeProgress(currentStep, totalSteps int) int {
	if totalSteps <= 0 {
		return 0
	}
	if currentStep >= totalSteps {
		return 100
	}
	return int(math.Round(float64(currentStep) / float64(totalSteps) * 100))
}

// LogAction tags an agent decision-log entry.
type LogAction string

const (
	LogStarted   LogAction = "STARTED"
	LogExecuting LogAction = "EXECUTING"
	LogCompleted LogAction = "COMPLETED"
	LogFailed    LogAction = "FAILED"
	LogDecision  LogAction = "DECISION"
)

// LogEntry is an immutable record of a scheduling decision or step outcome.
type LogEntry struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Action     LogAction      `json:"action"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	StepIndex  *int           `json:"step_index,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
}

// AgentState is the observable snapshot of the agent loop.
type AgentState struct {
	Status          AgentStatus `json:"status"`
	CurrentTask     string      `json:"current_task,omitempty"`
	ActiveWorkflows int         `json:"active_workflows"`
	CompletedToday  int         `json:"completed_today"`
	DecisionsMade   int         `json:"decisions_made"`
	LastActivity    time.Time   `json:"last_activity"`
}
