package config

import (
	"strings"
	"testing"
)

func TestParseSchedulerDefaults(t *testing.T) {
	cfg, err := ParseScheduler(nil)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if cfg.MaxConcurrent != 3 || cfg.HighPriorityCap != 2 || cfg.HighPriorityThreshold != 4 {
		t.Fatalf("unexpected caps: %+v", cfg)
	}
	if cfg.TickIntervalSeconds != 30 || cfg.ErrorBackoffSeconds != 60 {
		t.Fatalf("unexpected cadence: %+v", cfg)
	}
}

func TestParseSchedulerOverrides(t *testing.T) {
	data := []byte("max_concurrent: 5\nhigh_priority_cap: 4\ntick_interval_seconds: 10\n")
	cfg, err := ParseScheduler(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.MaxConcurrent != 5 || cfg.HighPriorityCap != 4 || cfg.TickIntervalSeconds != 10 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// Unset fields still fall back to defaults.
	if cfg.HighPriorityThreshold != 4 || cfg.AnalysisIntervalSeconds != 3600 {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
}

func TestParseSchedulerRejectsUnknownField(t *testing.T) {
	if _, err := ParseScheduler([]byte("max_concurrentcy: 5\n")); err == nil {
		t.Fatalf("expected schema error for unknown field")
	}
}

func TestParseSchedulerRejectsCapAboveMax(t *testing.T) {
	_, err := ParseScheduler([]byte("max_concurrent: 2\nhigh_priority_cap: 3\n"))
	if err == nil || !strings.Contains(err.Error(), "exceeds max_concurrent") {
		t.Fatalf("expected cap error, got %v", err)
	}
}

func TestLoadSchedulerMissingFile(t *testing.T) {
	cfg, err := LoadScheduler("does-not-exist.yaml")
	if err == nil {
		t.Fatalf("expected read error")
	}
	if cfg == nil || cfg.MaxConcurrent != 3 {
		t.Fatalf("expected defaults on missing file, got %+v", cfg)
	}
}
