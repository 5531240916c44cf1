package trends

import (
	"strings"
	"testing"

	"github.com/overmind-ai/overmind/core/workflow"
)

func TestAnalyzeOpportunities(t *testing.T) {
	recent := []Trend{
		{Keyword: "Quit my job to start a business", TrendScore: 5.0, ProfitabilityPotential: 0.5},
		{Keyword: "Nothing relevant here", TrendScore: 1.0},
	}
	got := AnalyzeOpportunities(recent, 10)
	if len(got) != 6 {
		t.Fatalf("expected 6 opportunities (business + career categories), got %d", len(got))
	}
	first := got[0]
	if first.TemplateType != "Business Plan Template" {
		t.Fatalf("first template = %q", first.TemplateType)
	}
	if first.EstimatedPrice != 25 || first.ProfitPotential != 12.5 {
		t.Fatalf("pricing wrong: %+v", first)
	}
	if first.Status != "opportunity_identified" || first.ID == "" {
		t.Fatalf("unexpected opportunity: %+v", first)
	}
	// "job" matches the career category too.
	sawResume := false
	for _, opp := range got {
		if opp.TemplateType == "Resume Template" {
			sawResume = true
		}
	}
	if !sawResume {
		t.Fatalf("expected career templates in %+v", got)
	}
}

func TestAnalyzeOpportunitiesLimit(t *testing.T) {
	recent := []Trend{
		{Keyword: "business plan for my wedding event startup", TrendScore: 2.0},
	}
	got := AnalyzeOpportunities(recent, 3)
	if len(got) != 3 {
		t.Fatalf("expected capped output, got %d", len(got))
	}
}

func TestTemplatePrice(t *testing.T) {
	if TemplatePrice("Wedding Planner") != 45 {
		t.Fatalf("wedding planner price wrong")
	}
	if TemplatePrice("Unknown Thing") != 20 {
		t.Fatalf("default price wrong")
	}
}

func TestTemplateDifficulty(t *testing.T) {
	if templateDifficulty("Goal Tracker") != "Easy" {
		t.Fatalf("tracker should be easy")
	}
	if templateDifficulty("Pitch Deck Template") != "Medium" {
		t.Fatalf("pitch deck should be medium")
	}
}

func TestBuildTemplateWorkflow(t *testing.T) {
	opp := Opportunity{
		ID:              "opp-1",
		TemplateType:    "Resume Template",
		TrendingKeyword: "job hunting tips",
		EstimatedPrice:  8,
	}
	wf := BuildTemplateWorkflow(opp)

	if len(wf.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(wf.Steps))
	}
	order := []workflow.StepKind{
		workflow.KindMarketResearch,
		workflow.KindDesignPlanning,
		workflow.KindTemplateCreation,
		workflow.KindQualityCheck,
		workflow.KindListingCreation,
		workflow.KindRevenueTracking,
	}
	for i, kind := range order {
		if wf.Steps[i].Kind != kind {
			t.Fatalf("step %d kind = %q, want %q", i, wf.Steps[i].Kind, kind)
		}
	}

	if wf.Priority != 4 || wf.Status != workflow.StatusPending {
		t.Fatalf("unexpected admission fields: %+v", wf)
	}
	if wf.Type != "revenue_generation" || wf.Category != "digital_templates" {
		t.Fatalf("unexpected classification: %+v", wf)
	}
	if wf.TargetProfitability != 7.2 || wf.EstimatedRevenue != 8 {
		t.Fatalf("unexpected revenue fields: %+v", wf)
	}
	if wf.TimeInvestment != 360 {
		t.Fatalf("time investment = %d", wf.TimeInvestment)
	}
	if wf.ROIPerHour != 7.2/6 {
		t.Fatalf("roi per hour = %v", wf.ROIPerHour)
	}
	if wf.OpportunityID != "opp-1" {
		t.Fatalf("opportunity id = %q", wf.OpportunityID)
	}

	listing := wf.Steps[4]
	if listing.Params["estimated_price"] != 8.0 {
		t.Fatalf("listing price param = %v", listing.Params["estimated_price"])
	}
	if !strings.Contains(listing.Description, "Resume Template") {
		t.Fatalf("listing description = %q", listing.Description)
	}
}
