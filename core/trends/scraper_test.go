package trends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const feedFixture = `{
  "data": {
    "children": [
      {"data": {"title": "How I built a business plan template that sells", "score": 850, "num_comments": 120}},
      {"data": {"title": "Best productivity planner apps?", "score": 1500, "num_comments": 45}}
    ]
  }
}`

func TestScraperFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedFixture))
	}))
	defer srv.Close()

	s := NewScraper(srv.URL)
	got, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotUA != scraperUserAgent {
		t.Fatalf("user agent = %q", gotUA)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trends, got %d", len(got))
	}

	first := got[0]
	if first.TrendScore != 8.5 {
		t.Fatalf("trend score = %v", first.TrendScore)
	}
	if first.ProfitabilityPotential != 0.85 {
		t.Fatalf("profitability = %v", first.ProfitabilityPotential)
	}
	if first.Volume != 120 || first.Source != "reddit_entrepreneur" {
		t.Fatalf("unexpected trend: %+v", first)
	}
	if first.ID == "" || first.DetectedAt.IsZero() {
		t.Fatalf("missing id/timestamp: %+v", first)
	}

	// Profitability saturates at 1.0 above a score of 1000.
	if got[1].ProfitabilityPotential != 1.0 {
		t.Fatalf("profitability cap = %v", got[1].ProfitabilityPotential)
	}
}

func TestScraperFetchTruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("x", 150)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"children":[{"data":{"title":"` + long + `","score":10,"num_comments":1}}]}}`))
	}))
	defer srv.Close()

	got, err := NewScraper(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || len(got[0].Keyword) != 100 {
		t.Fatalf("expected truncated keyword, got %d chars", len(got[0].Keyword))
	}
}

func TestScraperFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewScraper(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestProductOpportunities(t *testing.T) {
	cases := []struct {
		title string
		want  []string
	}{
		{"Free course to learn marketing", []string{"Online Course"}},
		{"My template design workflow", []string{"Digital Template"}},
		{"A new automation tool for founders", []string{"SaaS Tool"}},
		{"Wrote an ebook guide", []string{"Online Course", "Digital Guide"}},
		{"Weekly planner checklist", []string{"Productivity Tool"}},
		{"Just venting", []string{"General Digital Product"}},
	}
	for _, tc := range cases {
		got := ProductOpportunities(tc.title)
		if len(got) != len(tc.want) {
			t.Fatalf("%q: got %v want %v", tc.title, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%q: got %v want %v", tc.title, got, tc.want)
			}
		}
	}
}
