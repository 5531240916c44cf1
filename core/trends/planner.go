package trends

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/overmind-ai/overmind/core/workflow"
)

var templatePricing = map[string]float64{
	"Business Plan Template":    25,
	"Pitch Deck Template":       35,
	"Financial Tracker":         15,
	"Social Media Templates":    20,
	"Content Calendar":          18,
	"Instagram Story Templates": 12,
	"Productivity Planner":      22,
	"Goal Tracker":              16,
	"Daily Schedule Template":   14,
	"Resume Template":           8,
	"Cover Letter Template":     6,
	"Portfolio Template":        28,
	"Wedding Planner":           45,
	"Event Timeline":            25,
	"Invitation Template":       15,
}

var templateCategories = []struct {
	keywords  []string
	templates []string
}{
	{
		keywords:  []string{"business", "startup", "entrepreneur", "plan"},
		templates: []string{"Business Plan Template", "Pitch Deck Template", "Financial Tracker"},
	},
	{
		keywords:  []string{"social media", "instagram", "content", "marketing"},
		templates: []string{"Social Media Templates", "Content Calendar", "Instagram Story Templates"},
	},
	{
		keywords:  []string{"productivity", "planner", "organize", "schedule"},
		templates: []string{"Productivity Planner", "Goal Tracker", "Daily Schedule Template"},
	},
	{
		keywords:  []string{"resume", "cv", "job", "career"},
		templates: []string{"Resume Template", "Cover Letter Template", "Portfolio Template"},
	},
	{
		keywords:  []string{"wedding", "event", "party", "celebration"},
		templates: []string{"Wedding Planner", "Event Timeline", "Invitation Template"},
	},
}

// TemplatePrice returns the estimated selling price for a template type.
func TemplatePrice(templateType string) float64 {
	if price, ok := templatePricing[templateType]; ok {
		return price
	}
	return 20
}

// AnalyzeOpportunities maps recent trends to sellable template types.
// At most maxOut opportunities come back, in trend order.
func AnalyzeOpportunities(recent []Trend, maxOut int) []Opportunity {
	if maxOut <= 0 {
		maxOut = 10
	}
	now := time.Now().UTC()
	var out []Opportunity
	for _, trend := range recent {
		keyword := strings.ToLower(trend.Keyword)
		for _, cat := range templateCategories {
			if !containsAnyWord(keyword, cat.keywords) {
				continue
			}
			for _, templateType := range cat.templates {
				price := TemplatePrice(templateType)
				out = append(out, Opportunity{
					ID:              uuid.NewString(),
					TemplateType:    templateType,
					TrendingKeyword: trend.Keyword,
					MarketDemand:    trend.TrendScore,
					EstimatedPrice:  price,
					Difficulty:      templateDifficulty(templateType),
					TimeToCreate:    "2-4 hours",
					Platforms:       []string{"Etsy", "Gumroad", "Creative Market"},
					ProfitPotential: trend.ProfitabilityPotential * price,
					CreatedAt:       now,
					Status:          "opportunity_identified",
				})
			}
		}
	}
	if len(out) > maxOut {
		out = out[:maxOut]
	}
	return out
}

func templateDifficulty(templateType string) string {
	lower := strings.ToLower(templateType)
	for _, word := range []string{"planner", "tracker", "calendar"} {
		if strings.Contains(lower, word) {
			return "Easy"
		}
	}
	return "Medium"
}

func containsAnyWord(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}

// BuildTemplateWorkflow turns an opportunity into a six-step production
// workflow. The listing step carries the price so its handler does not
// need to read the workflow record back.
func BuildTemplateWorkflow(opp Opportunity) *workflow.Workflow {
	steps := []workflow.Step{
		{
			Kind:          workflow.KindMarketResearch,
			Name:          fmt.Sprintf("Research %s market", opp.TemplateType),
			Description:   fmt.Sprintf("Analyze competitor pricing and features for %s", opp.TemplateType),
			Tools:         []string{"Etsy search", "Google Trends", "Pinterest research"},
			EstimatedTime: 30,
		},
		{
			Kind:          workflow.KindDesignPlanning,
			Name:          "Plan template design",
			Description:   fmt.Sprintf("Create design brief and layout plan for %s", opp.TemplateType),
			Tools:         []string{"Canva (free)", "GIMP", "Paper sketching"},
			EstimatedTime: 45,
		},
		{
			Kind:          workflow.KindTemplateCreation,
			Name:          "Create template",
			Description:   fmt.Sprintf("Design and build the %s using free tools", opp.TemplateType),
			Tools:         []string{"Canva", "Google Docs/Sheets", "GIMP"},
			EstimatedTime: 180,
		},
		{
			Kind:          workflow.KindQualityCheck,
			Name:          "Review and refine",
			Description:   "Check template quality, usability, and market fit",
			Tools:         []string{"Manual review", "Test with sample data"},
			EstimatedTime: 30,
		},
		{
			Kind:          workflow.KindListingCreation,
			Name:          "Create marketplace listings",
			Description:   fmt.Sprintf("Write descriptions, create previews, set pricing for %s", opp.TemplateType),
			Tools:         []string{"Etsy", "Gumroad", "Creative Market"},
			EstimatedTime: 60,
			Params:        map[string]any{"estimated_price": opp.EstimatedPrice},
		},
		{
			Kind:          workflow.KindRevenueTracking,
			Name:          "Monitor sales performance",
			Description:   "Track sales, customer feedback, and optimize pricing",
			Tools:         []string{"Platform analytics", "Revenue tracking"},
			EstimatedTime: 15,
		},
	}

	totalMinutes := 0
	for _, step := range steps {
		totalMinutes += step.EstimatedTime
	}
	target := opp.EstimatedPrice * 0.9

	return &workflow.Workflow{
		ID:                  uuid.NewString(),
		Name:                fmt.Sprintf("Create %s - Revenue Target: $%.0f", opp.TemplateType, opp.EstimatedPrice),
		Description:         fmt.Sprintf("Complete workflow to create and sell %s based on trending keyword: %s", opp.TemplateType, opp.TrendingKeyword),
		Type:                "revenue_generation",
		Category:            "digital_templates",
		Steps:               steps,
		Status:              workflow.StatusPending,
		Priority:            4,
		TargetProfitability: target,
		EstimatedRevenue:    opp.EstimatedPrice,
		TimeInvestment:      totalMinutes,
		ROIPerHour:          target / (float64(totalMinutes) / 60),
		OpportunityID:       opp.ID,
		Results:             map[int]workflow.StepResult{},
		CreatedAt:           time.Now().UTC(),
	}
}
