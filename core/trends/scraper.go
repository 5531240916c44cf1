package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const scraperUserAgent = "Overmind-Agent/1.0"

// Scraper pulls trending topics from a Reddit hot-posts JSON feed.
type Scraper struct {
	client *http.Client
	url    string
}

// NewScraper builds a scraper for the given feed URL.
func NewScraper(url string) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string `json:"title"`
				Score       int    `json:"score"`
				NumComments int    `json:"num_comments"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch retrieves the feed and converts posts into trends. Post titles
// are truncated to 100 chars; scores map to trend and profitability
// figures on fixed scales.
func (s *Scraper) Fetch(ctx context.Context) ([]Trend, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build trend request: %w", err)
	}
	req.Header.Set("User-Agent", scraperUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trends: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch trends: status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode trend feed: %w", err)
	}

	now := time.Now().UTC()
	out := make([]Trend, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		keyword := post.Title
		if len(keyword) > 100 {
			keyword = keyword[:100]
		}
		out = append(out, Trend{
			ID:                     uuid.NewString(),
			Keyword:                keyword,
			Source:                 "reddit_entrepreneur",
			TrendScore:             float64(post.Score) / 100.0,
			Volume:                 post.NumComments,
			ProfitabilityPotential: min(float64(post.Score)/1000.0, 1.0),
			DetectedAt:             now,
			ProductOpportunities:   ProductOpportunities(post.Title),
		})
	}
	return out, nil
}

// ProductOpportunities tags a title with broad digital-product categories.
func ProductOpportunities(title string) []string {
	var out []string
	lower := strings.ToLower(title)

	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	if containsAny("course", "learn", "tutorial", "guide") {
		out = append(out, "Online Course")
	}
	if containsAny("template", "design", "mockup") {
		out = append(out, "Digital Template")
	}
	if containsAny("tool", "app", "software", "automation") {
		out = append(out, "SaaS Tool")
	}
	if containsAny("ebook", "book", "guide", "manual") {
		out = append(out, "Digital Guide")
	}
	if containsAny("checklist", "worksheet", "planner") {
		out = append(out, "Productivity Tool")
	}
	if len(out) == 0 {
		out = []string{"General Digital Product"}
	}
	return out
}
