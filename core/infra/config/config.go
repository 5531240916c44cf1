package config

import "os"

const (
	defaultNATSURL       = "nats://localhost:4222"
	defaultRedisURL      = "redis://localhost:6379"
	defaultHTTPAddr      = ":8000"
	defaultMetricsAddr   = ":9090"
	defaultSchedulerPath = "config/scheduler.yaml"
	defaultTrendSource   = "https://www.reddit.com/r/Entrepreneur/hot.json?limit=10"
	envNATSURL           = "NATS_URL"
	envRedisURL          = "REDIS_URL"
	envHTTPAddr          = "HTTP_ADDR"
	envMetricsAddr       = "METRICS_ADDR"
	envSchedulerCfgPath  = "SCHEDULER_CONFIG_PATH"
	envTrendSourceURL    = "TREND_SOURCE_URL"
	envDisableBus        = "DISABLE_BUS"
	envDisableTrendFetch = "DISABLE_TREND_FETCH"
)

// Config holds runtime configuration for the agent daemon.
type Config struct {
	NatsURL             string
	RedisURL            string
	HTTPAddr            string
	MetricsAddr         string
	SchedulerConfigPath string
	TrendSourceURL      string
	DisableBus          bool
	DisableTrendFetch   bool
}

// Load returns configuration using environment variables with sane defaults.
func Load() *Config {
	natsURL := os.Getenv(envNATSURL)
	if natsURL == "" {
		natsURL = defaultNATSURL
	}

	redisURL := os.Getenv(envRedisURL)
	if redisURL == "" {
		redisURL = defaultRedisURL
	}

	httpAddr := os.Getenv(envHTTPAddr)
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}
	metricsAddr := os.Getenv(envMetricsAddr)
	if metricsAddr == "" {
		metricsAddr = defaultMetricsAddr
	}

	schedulerPath := os.Getenv(envSchedulerCfgPath)
	if schedulerPath == "" {
		schedulerPath = defaultSchedulerPath
	}
	trendSource := os.Getenv(envTrendSourceURL)
	if trendSource == "" {
		trendSource = defaultTrendSource
	}

	return &Config{
		NatsURL:             natsURL,
		RedisURL:            redisURL,
		HTTPAddr:            httpAddr,
		MetricsAddr:         metricsAddr,
		SchedulerConfigPath: schedulerPath,
		TrendSourceURL:      trendSource,
		DisableBus:          os.Getenv(envDisableBus) == "true",
		DisableTrendFetch:   os.Getenv(envDisableTrendFetch) == "true",
	}
}
