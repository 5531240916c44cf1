// Package trends detects trending topics and turns them into
// revenue-generating template opportunities.
package trends

import "time"

// Trend is one trending topic pulled from an external source.
type Trend struct {
	ID                     string    `json:"id"`
	Keyword                string    `json:"keyword"`
	Source                 string    `json:"source"`
	TrendScore             float64   `json:"trend_score"`
	Volume                 int       `json:"volume"`
	ProfitabilityPotential float64   `json:"profitability_potential"`
	DetectedAt             time.Time `json:"detected_at"`
	ProductOpportunities   []string  `json:"product_opportunities,omitempty"`
}

// Opportunity is a concrete template product derived from a trend.
type Opportunity struct {
	ID              string    `json:"id"`
	TemplateType    string    `json:"template_type"`
	TrendingKeyword string    `json:"trending_keyword"`
	MarketDemand    float64   `json:"market_demand"`
	EstimatedPrice  float64   `json:"estimated_price"`
	Difficulty      string    `json:"difficulty"`
	TimeToCreate    string    `json:"time_to_create"`
	Platforms       []string  `json:"platforms"`
	ProfitPotential float64   `json:"profit_potential"`
	CreatedAt       time.Time `json:"created_at"`
	Status          string    `json:"status"`
}
