package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchedulerConfig tunes the agent control loop: concurrency caps, tick
// cadence, and the background trend/analysis cadences.
type SchedulerConfig struct {
	// MaxConcurrent is the hard ceiling on simultaneously running workflows.
	MaxConcurrent int `yaml:"max_concurrent"`
	// HighPriorityCap reserves the top of the running set: workflows at or
	// above HighPriorityThreshold may start while running < HighPriorityCap.
	HighPriorityCap       int `yaml:"high_priority_cap"`
	HighPriorityThreshold int `yaml:"high_priority_threshold"`

	TickIntervalSeconds int64 `yaml:"tick_interval_seconds"`
	ErrorBackoffSeconds int64 `yaml:"error_backoff_seconds"`
	StepDelaySeconds    int64 `yaml:"step_delay_seconds"`

	TrendRefreshSeconds      int64 `yaml:"trend_refresh_seconds"`
	TrendErrorBackoffSeconds int64 `yaml:"trend_error_backoff_seconds"`
	AnalysisIntervalSeconds  int64 `yaml:"analysis_interval_seconds"`
	MaxOpportunityWorkflows  int   `yaml:"max_opportunity_workflows"`
}

// LoadScheduler loads a YAML scheduler file; returns defaults if missing.
func LoadScheduler(path string) (*SchedulerConfig, error) {
	if path == "" {
		return defaultSchedulerConfig(), nil
	}
	// #nosec G304 -- scheduler config path is operator-provided.
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultSchedulerConfig(), fmt.Errorf("read scheduler config: %w", err)
	}
	cfg, err := ParseScheduler(data)
	if err != nil {
		return defaultSchedulerConfig(), fmt.Errorf("load scheduler config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseScheduler parses scheduler config data from YAML/JSON bytes.
func ParseScheduler(data []byte) (*SchedulerConfig, error) {
	if len(data) == 0 {
		return defaultSchedulerConfig(), nil
	}
	if err := validateConfigSchema("scheduler", schedulerSchemaFile, data); err != nil {
		return nil, err
	}
	var cfg SchedulerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse scheduler config: %w", err)
	}
	cfg.fillDefaults()
	if cfg.HighPriorityCap > cfg.MaxConcurrent {
		return nil, fmt.Errorf("high_priority_cap %d exceeds max_concurrent %d",
			cfg.HighPriorityCap, cfg.MaxConcurrent)
	}
	return &cfg, nil
}

func (c *SchedulerConfig) fillDefaults() {
	def := defaultSchedulerConfig()
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = def.MaxConcurrent
	}
	if c.HighPriorityCap <= 0 {
		c.HighPriorityCap = def.HighPriorityCap
	}
	if c.HighPriorityThreshold <= 0 {
		c.HighPriorityThreshold = def.HighPriorityThreshold
	}
	if c.TickIntervalSeconds <= 0 {
		c.TickIntervalSeconds = def.TickIntervalSeconds
	}
	if c.ErrorBackoffSeconds <= 0 {
		c.ErrorBackoffSeconds = def.ErrorBackoffSeconds
	}
	if c.StepDelaySeconds < 0 {
		c.StepDelaySeconds = def.StepDelaySeconds
	}
	if c.TrendRefreshSeconds <= 0 {
		c.TrendRefreshSeconds = def.TrendRefreshSeconds
	}
	if c.TrendErrorBackoffSeconds <= 0 {
		c.TrendErrorBackoffSeconds = def.TrendErrorBackoffSeconds
	}
	if c.AnalysisIntervalSeconds <= 0 {
		c.AnalysisIntervalSeconds = def.AnalysisIntervalSeconds
	}
	if c.MaxOpportunityWorkflows <= 0 {
		c.MaxOpportunityWorkflows = def.MaxOpportunityWorkflows
	}
}

func defaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		MaxConcurrent:            3,
		HighPriorityCap:          2,
		HighPriorityThreshold:    4,
		TickIntervalSeconds:      30,
		ErrorBackoffSeconds:      60,
		StepDelaySeconds:         2,
		TrendRefreshSeconds:      300,
		TrendErrorBackoffSeconds: 600,
		AnalysisIntervalSeconds:  3600,
		MaxOpportunityWorkflows:  3,
	}
}
