// Package agent implements the control loop that drives workflows from
// pending through running to completed, one step per workflow per tick.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/overmind-ai/overmind/core/agentstate"
	"github.com/overmind-ai/overmind/core/infra/config"
	"github.com/overmind-ai/overmind/core/infra/logging"
	"github.com/overmind-ai/overmind/core/infra/metrics"
	"github.com/overmind-ai/overmind/core/steps"
	"github.com/overmind-ai/overmind/core/trends"
	"github.com/overmind-ai/overmind/core/workflow"
)

const component = "agent"

// Store is the workflow persistence surface the engine drives.
type Store interface {
	Save(ctx context.Context, wf *workflow.Workflow) error
	Update(ctx context.Context, wf *workflow.Workflow) error
	ListByStatus(ctx context.Context, status workflow.Status) ([]*workflow.Workflow, error)
	CountByStatus(ctx context.Context, status workflow.Status) (int, error)
}

// LogSink receives decision-log entries, fire-and-forget.
type LogSink interface {
	Append(ctx context.Context, entry workflow.LogEntry) error
}

// TrendSource supplies recent trends for the hourly opportunity sweep.
type TrendSource interface {
	RecentTrends(ctx context.Context, limit int64) ([]trends.Trend, error)
	SaveOpportunities(ctx context.Context, batch []trends.Opportunity) error
}

// Engine is the single-writer scheduler. Exactly one Engine may run
// against a given store.
type Engine struct {
	store    Store
	logs     LogSink
	registry *steps.Registry
	state    *agentstate.State
	metrics  metrics.AgentMetrics
	trendSrc TrendSource
	cfg      *config.SchedulerConfig
	clock    Clock

	lastAnalysis time.Time
}

// NewEngine wires up an engine. trendSrc may be nil, which disables the
// opportunity sweep.
func NewEngine(store Store, logs LogSink, registry *steps.Registry, state *agentstate.State, m metrics.AgentMetrics, trendSrc TrendSource, cfg *config.SchedulerConfig, clock Clock) *Engine {
	if m == nil {
		m = metrics.Noop{}
	}
	if cfg == nil {
		cfg, _ = config.LoadScheduler("")
	}
	if clock == nil {
		clock = NewClock()
	}
	if state == nil {
		state = agentstate.New()
	}
	return &Engine{
		store:    store,
		logs:     logs,
		registry: registry,
		state:    state,
		metrics:  m,
		trendSrc: trendSrc,
		cfg:      cfg,
		clock:    clock,
	}
}

// Tick runs one scheduling pass: advance every running workflow by one
// step, then admit pending workflows into spare capacity. A store error
// aborts the whole tick; the caller retries it after a backoff.
func (e *Engine) Tick(ctx context.Context) error {
	e.state.SetStatus(workflow.AgentThinking, "")

	e.maybeAnalyzeOpportunities(ctx)

	running, err := e.store.ListByStatus(ctx, workflow.StatusRunning)
	if err != nil {
		return fmt.Errorf("list running: %w", err)
	}
	for _, wf := range running {
		if err := e.advance(ctx, wf); err != nil {
			return err
		}
	}

	if err := e.admit(ctx); err != nil {
		return err
	}

	runningCount, err := e.store.CountByStatus(ctx, workflow.StatusRunning)
	if err != nil {
		return fmt.Errorf("count running: %w", err)
	}
	e.metrics.SetRunningWorkflows(runningCount)
	e.metrics.IncTicks()
	e.state.SetStatus(workflow.AgentIdle, "")
	return nil
}

// Run drives ticks until the context is cancelled. Store errors abort
// the tick, get logged, and push the next attempt out to the longer
// error backoff; they are never fatal.
func (e *Engine) Run(ctx context.Context) {
	tickInterval := time.Duration(e.cfg.TickIntervalSeconds) * time.Second
	errorBackoff := time.Duration(e.cfg.ErrorBackoffSeconds) * time.Second

	logging.Info(component, "control loop started",
		"tick_interval", tickInterval.String(),
		"max_concurrent", e.cfg.MaxConcurrent)
	for {
		wait := tickInterval
		if err := e.Tick(ctx); err != nil {
			e.metrics.IncTickErrors()
			logging.Error(component, "tick aborted", "error", err)
			wait = errorBackoff
		}
		select {
		case <-ctx.Done():
			return
		case <-e.clock.After(wait):
		}
	}
}

// advance dispatches exactly one step for a running workflow. Failed
// steps are recorded and still consume the step; the loop never moves a
// workflow to failed on its own.
func (e *Engine) advance(ctx context.Context, wf *workflow.Workflow) error {
	if wf.CurrentStep >= len(wf.Steps) {
		// Malformed or externally-touched record: treat as complete.
		return e.finalize(ctx, wf)
	}

	step := wf.Steps[wf.CurrentStep]
	e.state.SetStatus(workflow.AgentExecuting, "Working on "+wf.Name)
	e.appendLog(ctx, workflow.LogEntry{
		Action:     workflow.LogExecuting,
		WorkflowID: wf.ID,
		StepIndex:  intPtr(wf.CurrentStep),
		Detail: map[string]any{
			"step_name": step.Name,
			"step_type": string(step.Kind),
		},
	})

	result := e.registry.Dispatch(ctx, wf.ID, step)
	e.stepPause(ctx)

	idx := wf.CurrentStep
	if wf.Results == nil {
		wf.Results = map[int]workflow.StepResult{}
	}
	wf.Results[idx] = result
	wf.CurrentStep++
	wf.Progress = workflow.ComputeProgress(wf.CurrentStep, len(wf.Steps))
	e.state.IncDecisions()

	if result.Success {
		e.metrics.IncStepsExecuted("ok")
		e.appendLog(ctx, workflow.LogEntry{
			Action:     workflow.LogCompleted,
			WorkflowID: wf.ID,
			StepIndex:  intPtr(idx),
			Detail: map[string]any{
				"step_name": step.Name,
			},
		})
	} else {
		e.metrics.IncStepsExecuted("failed")
		e.appendLog(ctx, workflow.LogEntry{
			Action:     workflow.LogFailed,
			WorkflowID: wf.ID,
			StepIndex:  intPtr(idx),
			Detail: map[string]any{
				"step_name": step.Name,
				"error":     result.Error,
			},
		})
	}

	if wf.CurrentStep >= len(wf.Steps) {
		return e.finalize(ctx, wf)
	}
	if err := e.store.Update(ctx, wf); err != nil {
		return fmt.Errorf("update workflow %s: %w", wf.ID, err)
	}
	return nil
}

func (e *Engine) finalize(ctx context.Context, wf *workflow.Workflow) error {
	now := e.clock.Now()
	wf.Status = workflow.StatusCompleted
	wf.Progress = 100
	if wf.CompletedAt == nil {
		wf.CompletedAt = &now
	}
	if err := e.store.Update(ctx, wf); err != nil {
		return fmt.Errorf("complete workflow %s: %w", wf.ID, err)
	}
	e.state.IncCompleted()
	e.metrics.IncWorkflowCompleted(wf.Type, string(workflow.StatusCompleted))
	detail := map[string]any{
		"name": wf.Name,
	}
	if wf.Category == "digital_templates" {
		detail["reasoning"] = "Template ready for marketplace listing"
		detail["next_action"] = "List on Etsy, Gumroad, Creative Market"
		detail["revenue_potential"] = wf.EstimatedRevenue
	}
	e.appendLog(ctx, workflow.LogEntry{
		Action:     workflow.LogCompleted,
		WorkflowID: wf.ID,
		Detail:     detail,
	})
	logging.Info(component, "workflow completed", "id", wf.ID, "name", wf.Name)
	return nil
}

// admit starts pending workflows while capacity remains. Workflows at or
// above the priority threshold only occupy the reserved high-priority
// slots; everything else can fill up to the general cap.
func (e *Engine) admit(ctx context.Context) error {
	runningCount, err := e.store.CountByStatus(ctx, workflow.StatusRunning)
	if err != nil {
		return fmt.Errorf("count running: %w", err)
	}
	if runningCount >= e.cfg.MaxConcurrent {
		return nil
	}
	pending, err := e.store.ListByStatus(ctx, workflow.StatusPending)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}

	for _, wf := range pending {
		if runningCount >= e.cfg.MaxConcurrent {
			break
		}
		highPriority := wf.Priority >= e.cfg.HighPriorityThreshold
		if highPriority && runningCount >= e.cfg.HighPriorityCap {
			continue
		}

		now := e.clock.Now()
		wf.Status = workflow.StatusRunning
		wf.StartedAt = &now
		if err := e.store.Update(ctx, wf); err != nil {
			return fmt.Errorf("admit workflow %s: %w", wf.ID, err)
		}
		runningCount++
		e.state.IncActive()
		e.metrics.IncWorkflowStarted(wf.Type)

		detail := map[string]any{
			"name":     wf.Name,
			"priority": wf.Priority,
			"capacity": e.cfg.MaxConcurrent - runningCount,
		}
		if highPriority {
			detail["reasoning"] = fmt.Sprintf("Revenue priority - Target: $%.0f, ROI: $%.2f/hour",
				wf.EstimatedRevenue, wf.ROIPerHour)
		} else {
			detail["reasoning"] = "General capacity available"
		}
		e.appendLog(ctx, workflow.LogEntry{
			Action:     workflow.LogStarted,
			WorkflowID: wf.ID,
			Detail:     detail,
		})
		logging.Info(component, "workflow admitted", "id", wf.ID, "priority", wf.Priority, "running", runningCount)
	}
	return nil
}

// maybeAnalyzeOpportunities runs the template-opportunity sweep at most
// once per analysis interval. Failures here never abort the tick.
func (e *Engine) maybeAnalyzeOpportunities(ctx context.Context) {
	if e.trendSrc == nil {
		return
	}
	now := e.clock.Now()
	interval := time.Duration(e.cfg.AnalysisIntervalSeconds) * time.Second
	if !e.lastAnalysis.IsZero() && now.Sub(e.lastAnalysis) < interval {
		return
	}
	e.lastAnalysis = now
	e.state.SetStatus(workflow.AgentThinking, "Analyzing template opportunities")

	recent, err := e.trendSrc.RecentTrends(ctx, 20)
	if err != nil {
		logging.Error(component, "opportunity sweep: recent trends", "error", err)
		return
	}
	opps := trends.AnalyzeOpportunities(recent, 10)
	if len(opps) == 0 {
		return
	}
	if err := e.trendSrc.SaveOpportunities(ctx, opps); err != nil {
		logging.Error(component, "opportunity sweep: save opportunities", "error", err)
	}

	limit := e.cfg.MaxOpportunityWorkflows
	if limit > len(opps) {
		limit = len(opps)
	}
	for _, opp := range opps[:limit] {
		wf := trends.BuildTemplateWorkflow(opp)
		if err := e.store.Save(ctx, wf); err != nil {
			logging.Error(component, "opportunity sweep: save workflow", "template", opp.TemplateType, "error", err)
			continue
		}
		e.appendLog(ctx, workflow.LogEntry{
			Action:     workflow.LogDecision,
			WorkflowID: wf.ID,
			Detail: map[string]any{
				"action":            "Created revenue workflow: " + opp.TemplateType,
				"reasoning":         fmt.Sprintf("High profit potential $%.0f based on trending: %s", opp.EstimatedPrice, opp.TrendingKeyword),
				"revenue_potential": opp.EstimatedPrice,
				"template_type":     opp.TemplateType,
			},
		})
		logging.Info(component, "revenue workflow created", "template", opp.TemplateType, "price", opp.EstimatedPrice)
	}
}

// stepPause simulates the work a step takes; zero delay in tests.
func (e *Engine) stepPause(ctx context.Context) {
	delay := time.Duration(e.cfg.StepDelaySeconds) * time.Second
	if delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-e.clock.After(delay):
	}
}

func (e *Engine) appendLog(ctx context.Context, entry workflow.LogEntry) {
	if e.logs == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = e.clock.Now()
	}
	if err := e.logs.Append(ctx, entry); err != nil {
		logging.Error(component, "append log entry", "action", string(entry.Action), "error", err)
	}
}

func intPtr(v int) *int { return &v }
