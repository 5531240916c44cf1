package gateway

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/overmind-ai/overmind/core/infra/logging"
	"github.com/overmind-ai/overmind/core/infra/schema"
	"github.com/overmind-ai/overmind/core/trends"
	"github.com/overmind-ai/overmind/core/workflow"
)

//go:embed schema/create_workflow.schema.json
var createWorkflowSchemaRaw []byte

var (
	createWorkflowSchemaOnce sync.Once
	createWorkflowSchema     *jsonschema.Schema
	createWorkflowSchemaErr  error
)

func compiledCreateWorkflowSchema() (*jsonschema.Schema, error) {
	createWorkflowSchemaOnce.Do(func() {
		createWorkflowSchema, createWorkflowSchemaErr = schema.Compile(
			"create_workflow.schema.json", createWorkflowSchemaRaw)
	})
	return createWorkflowSchema, createWorkflowSchemaErr
}

type createWorkflowRequest struct {
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	Type                string          `json:"type"`
	Priority            *int            `json:"priority"`
	TargetProfitability float64         `json:"target_profitability"`
	Steps               []workflow.Step `json:"steps"`
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseLimit(r *http.Request, def int64) int64 {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 || n > 500 {
		return def
	}
	return n
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleAgentLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.logs.Recent(r.Context(), parseLimit(r, 100))
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to load logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	items, err := s.workflows.List(r.Context(), parseLimit(r, 100))
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to load workflows")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workflows": items})
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		httpError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	compiled, err := compiledCreateWorkflowSchema()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "schema unavailable")
		return
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := compiled.Validate(decoded); err != nil {
		httpError(w, http.StatusBadRequest, "invalid workflow: "+err.Error())
		return
	}
	var req createWorkflowRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	priority := 1
	if req.Priority != nil {
		priority = *req.Priority
	}
	category := "general"
	estimatedRevenue := 0.0
	if req.Type == "revenue_generation" {
		category = "digital_templates"
		estimatedRevenue = req.TargetProfitability / 0.9
	}

	wf := &workflow.Workflow{
		ID:                  uuid.NewString(),
		Name:                req.Name,
		Description:         req.Description,
		Type:                req.Type,
		Category:            category,
		Steps:               req.Steps,
		Status:              workflow.StatusPending,
		Priority:            priority,
		TargetProfitability: req.TargetProfitability,
		EstimatedRevenue:    estimatedRevenue,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.workflows.Save(r.Context(), wf); err != nil {
		logging.Error(component, "save workflow failed", "error", err)
		httpError(w, http.StatusInternalServerError, "failed to save workflow")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Workflow created successfully",
		"id":      wf.ID,
	})
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.workflows.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			httpError(w, http.StatusNotFound, "workflow not found")
			return
		}
		httpError(w, http.StatusInternalServerError, "failed to load workflow")
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

var validStatusOverrides = map[workflow.Status]bool{
	workflow.StatusPending:   true,
	workflow.StatusRunning:   true,
	workflow.StatusCompleted: true,
	workflow.StatusFailed:    true,
	workflow.StatusPaused:    true,
}

func (s *Server) handleSetWorkflowStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status workflow.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validStatusOverrides[req.Status] {
		httpError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if err := s.workflows.SetStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		if errors.Is(err, redis.Nil) {
			httpError(w, http.StatusNotFound, "workflow not found")
			return
		}
		httpError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
}

func (s *Server) handleListTrends(w http.ResponseWriter, r *http.Request) {
	items, err := s.trends.RecentTrends(r.Context(), parseLimit(r, 50))
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to load trends")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trends": items})
}

func (s *Server) handleRefreshTrends(w http.ResponseWriter, r *http.Request) {
	if s.scraper == nil {
		httpError(w, http.StatusServiceUnavailable, "trend detection disabled")
		return
	}
	batch, err := s.scraper.Fetch(r.Context())
	if err != nil {
		logging.Error(component, "trend refresh failed", "error", err)
		httpError(w, http.StatusBadGateway, "trend source unavailable")
		return
	}
	if err := s.trends.SaveTrends(r.Context(), batch); err != nil {
		httpError(w, http.StatusInternalServerError, "failed to save trends")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Found " + strconv.Itoa(len(batch)) + " new trends",
		"trends":  batch,
	})
}

func (s *Server) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	items, err := s.trends.RecentOpportunities(r.Context(), parseLimit(r, 20))
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to load opportunities")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"opportunities": items})
}

func (s *Server) handleCreateTemplateWorkflow(w http.ResponseWriter, r *http.Request) {
	opp, err := s.trends.GetOpportunity(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			httpError(w, http.StatusNotFound, "opportunity not found")
			return
		}
		httpError(w, http.StatusInternalServerError, "failed to load opportunity")
		return
	}
	wf := trends.BuildTemplateWorkflow(*opp)
	if err := s.workflows.Save(r.Context(), wf); err != nil {
		httpError(w, http.StatusInternalServerError, "failed to save workflow")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        "Revenue workflow created",
		"workflow_id":    wf.ID,
		"revenue_target": wf.TargetProfitability,
	})
}

func (s *Server) handleRevenueStats(w http.ResponseWriter, r *http.Request) {
	items, err := s.workflows.List(r.Context(), 500)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to load workflows")
		return
	}

	var (
		totalTarget     float64
		potentialEarned float64
		active          int
		pending         int
		completed       int
		revenueCount    int
	)
	for _, wf := range items {
		if wf.Category != "digital_templates" {
			continue
		}
		revenueCount++
		totalTarget += wf.TargetProfitability
		switch wf.Status {
		case workflow.StatusRunning:
			active++
		case workflow.StatusPending:
			pending++
		case workflow.StatusCompleted:
			completed++
			potentialEarned += wf.TargetProfitability
		}
	}

	opps, err := s.trends.RecentOpportunities(r.Context(), 200)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to load opportunities")
		return
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	opportunitiesToday := 0
	for _, opp := range opps {
		if !opp.CreatedAt.UTC().Before(today) {
			opportunitiesToday++
		}
	}

	avgPrice := 0.0
	if revenueCount > 0 {
		avgPrice = totalTarget / float64(revenueCount)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_revenue_target":        totalTarget,
		"potential_earned":            potentialEarned,
		"active_revenue_workflows":    active,
		"pending_revenue_workflows":   pending,
		"revenue_workflows_completed": completed,
		"opportunities_today":         opportunitiesToday,
		"average_template_price":      avgPrice,
	})
}

func (s *Server) handleNextActions(w http.ResponseWriter, r *http.Request) {
	running, err := s.workflows.ListByStatus(r.Context(), workflow.StatusRunning)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to load workflows")
		return
	}
	actions := make([]map[string]any, 0, len(running))
	for _, wf := range running {
		if wf.Category != "digital_templates" || wf.CurrentStep >= len(wf.Steps) {
			continue
		}
		step := wf.Steps[wf.CurrentStep]
		actions = append(actions, map[string]any{
			"workflow_id":    wf.ID,
			"workflow_name":  wf.Name,
			"next_step":      step.Name,
			"description":    step.Description,
			"tools":          step.Tools,
			"estimated_time": step.EstimatedTime,
			"revenue_target": wf.TargetProfitability,
			"progress":       wf.Progress,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"next_actions": actions})
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	total, err := s.workflows.Count(ctx)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to count workflows")
		return
	}
	active, err := s.workflows.CountByStatus(ctx, workflow.StatusRunning)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to count workflows")
		return
	}
	completed, err := s.workflows.CountByStatus(ctx, workflow.StatusCompleted)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to count workflows")
		return
	}
	totalTrends, err := s.trends.CountTrends(ctx)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to count trends")
		return
	}
	totalProducts, err := s.trends.CountOpportunities(ctx)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to count opportunities")
		return
	}

	items, err := s.workflows.List(ctx, 500)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to load workflows")
		return
	}
	var totalProfit, revenuePotential float64
	for _, wf := range items {
		totalProfit += wf.ActualProfitability
		if wf.Status == workflow.StatusCompleted && wf.Category == "digital_templates" {
			revenuePotential += wf.EstimatedRevenue
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_workflows":     total,
		"active_workflows":    active,
		"completed_workflows": completed,
		"total_trends":        totalTrends,
		"total_products":      totalProducts,
		"total_profit":        totalProfit,
		"revenue_potential":   revenuePotential,
		"agent_status":        s.state.Snapshot().Status,
	})
}
