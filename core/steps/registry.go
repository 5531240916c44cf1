// Package steps maps workflow step kinds to their execution handlers.
package steps

import (
	"context"

	"github.com/overmind-ai/overmind/core/infra/logging"
	"github.com/overmind-ai/overmind/core/workflow"
)

// Handler executes a single workflow step and reports its outcome.
// Handlers must not mutate the workflow record; the engine owns all
// workflow state transitions.
type Handler interface {
	Execute(ctx context.Context, workflowID string, step workflow.Step) workflow.StepResult
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, workflowID string, step workflow.Step) workflow.StepResult

func (f HandlerFunc) Execute(ctx context.Context, workflowID string, step workflow.Step) workflow.StepResult {
	return f(ctx, workflowID, step)
}

// Registry routes steps to handlers by kind. Unknown kinds fall through
// to a default handler so a workflow always makes forward progress.
type Registry struct {
	handlers map[workflow.StepKind]Handler
	fallback Handler
}

// NewRegistry returns a registry preloaded with the builtin handlers.
func NewRegistry() *Registry {
	r := &Registry{
		handlers: map[workflow.StepKind]Handler{},
		fallback: HandlerFunc(defaultStep),
	}
	r.Register(workflow.KindMarketResearch, HandlerFunc(marketResearchStep))
	r.Register(workflow.KindDesignPlanning, HandlerFunc(designPlanningStep))
	r.Register(workflow.KindTemplateCreation, HandlerFunc(templateCreationStep))
	r.Register(workflow.KindQualityCheck, HandlerFunc(qualityCheckStep))
	r.Register(workflow.KindListingCreation, HandlerFunc(listingCreationStep))
	r.Register(workflow.KindRevenueTracking, HandlerFunc(revenueTrackingStep))
	return r
}

// Register installs or replaces the handler for a step kind.
func (r *Registry) Register(kind workflow.StepKind, h Handler) {
	if kind == "" || h == nil {
		return
	}
	r.handlers[kind] = h
}

// SetFallback replaces the handler used for unregistered kinds.
func (r *Registry) SetFallback(h Handler) {
	if h != nil {
		r.fallback = h
	}
}

// Dispatch runs the handler registered for the step's kind. Dispatch
// itself never errors; handler failures come back as failed results.
func (r *Registry) Dispatch(ctx context.Context, workflowID string, step workflow.Step) workflow.StepResult {
	h, ok := r.handlers[step.Kind]
	if !ok {
		logging.Info("steps", "no handler for step kind, using fallback", "kind", string(step.Kind))
		h = r.fallback
	}
	return h.Execute(ctx, workflowID, step)
}

func defaultStep(_ context.Context, _ string, step workflow.Step) workflow.StepResult {
	return workflow.StepResult{
		Success: true,
		Data: map[string]any{
			"executed":  true,
			"step_type": string(step.Kind),
		},
	}
}
