package steps

import (
	"context"
	"testing"

	"github.com/overmind-ai/overmind/core/workflow"
)

func TestDispatchUnknownKindUsesFallback(t *testing.T) {
	r := NewRegistry()
	res := r.Dispatch(context.Background(), "wf-1", workflow.Step{Kind: "mystery_step"})
	if !res.Success {
		t.Fatalf("fallback should succeed, got %+v", res)
	}
	if res.Data["step_type"] != "mystery_step" {
		t.Fatalf("fallback should tag the unknown kind, got %+v", res.Data)
	}
}

func TestDispatchCustomHandler(t *testing.T) {
	r := NewRegistry()
	r.Register("custom_kind", HandlerFunc(func(_ context.Context, workflowID string, _ workflow.Step) workflow.StepResult {
		return workflow.StepResult{Success: false, Error: "boom " + workflowID}
	}))
	res := r.Dispatch(context.Background(), "wf-2", workflow.Step{Kind: "custom_kind"})
	if res.Success || res.Error != "boom wf-2" {
		t.Fatalf("custom handler not invoked: %+v", res)
	}
}

func TestMarketResearchVariants(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		desc  string
		price int
	}{
		{"Analyze competitor pricing and features for Business Plan Template", 28},
		{"Analyze competitor pricing and features for Resume Template", 16},
		{"Analyze competitor pricing and features for Social Media Templates", 22},
		{"Analyze competitor pricing and features for Wedding Planner", 0},
	}
	for _, tc := range cases {
		res := r.Dispatch(context.Background(), "wf", workflow.Step{
			Kind:        workflow.KindMarketResearch,
			Description: tc.desc,
		})
		if !res.Success {
			t.Fatalf("market research failed for %q: %+v", tc.desc, res)
		}
		if got := res.Data["recommended_price"]; got != tc.price {
			t.Fatalf("recommended_price for %q = %v, want %d", tc.desc, got, tc.price)
		}
	}
}

func TestListingCreationUsesPriceParam(t *testing.T) {
	r := NewRegistry()
	res := r.Dispatch(context.Background(), "wf", workflow.Step{
		Kind:        workflow.KindListingCreation,
		Description: "Write descriptions, create previews, set pricing for Resume Template",
		Params:      map[string]any{"estimated_price": 16.0},
	})
	if !res.Success {
		t.Fatalf("listing creation failed: %+v", res)
	}
	listing, ok := res.Data["listing_data"].(map[string]any)
	if !ok {
		t.Fatalf("missing listing_data: %+v", res.Data)
	}
	if earnings := listing["estimated_earnings"]; earnings != 16.0*0.92 {
		t.Fatalf("estimated_earnings = %v", earnings)
	}
	created, ok := listing["listings_created"].([]any)
	if !ok || len(created) != 1 {
		t.Fatalf("expected one resume listing, got %+v", listing["listings_created"])
	}
	if monthly := listing["estimated_monthly_earnings"]; monthly != 160.0 {
		t.Fatalf("estimated_monthly_earnings = %v", monthly)
	}
}

func TestQualityCheckAndDesignPlanning(t *testing.T) {
	r := NewRegistry()
	res := r.Dispatch(context.Background(), "wf", workflow.Step{Kind: workflow.KindQualityCheck})
	if !res.Success || res.Data["ready_for_market"] != true {
		t.Fatalf("quality check: %+v", res)
	}
	res = r.Dispatch(context.Background(), "wf", workflow.Step{
		Kind: workflow.KindDesignPlanning,
		Name: "Plan template design",
	})
	if !res.Success || res.Data["design_brief"] != "Professional design brief created for Plan template design" {
		t.Fatalf("design planning: %+v", res)
	}
}
