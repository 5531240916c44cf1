package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/overmind-ai/overmind/core/agentstate"
	"github.com/overmind-ai/overmind/core/controlplane/agent"
	"github.com/overmind-ai/overmind/core/controlplane/gateway"
	"github.com/overmind-ai/overmind/core/infra/buildinfo"
	"github.com/overmind-ai/overmind/core/infra/bus"
	"github.com/overmind-ai/overmind/core/infra/config"
	infraMetrics "github.com/overmind-ai/overmind/core/infra/metrics"
	"github.com/overmind-ai/overmind/core/steps"
	"github.com/overmind-ai/overmind/core/trends"
	"github.com/overmind-ai/overmind/core/workflow"
)

func main() {
	log.Println("overmind agent starting...")
	buildinfo.Log("overmind-agent")

	cfg := config.Load()

	schedCfg, err := config.LoadScheduler(cfg.SchedulerConfigPath)
	if err != nil {
		log.Printf("using default scheduler config (could not load %s): %v", cfg.SchedulerConfigPath, err)
	}

	agentMetrics := infraMetrics.NewProm("overmind")
	gatewayMetrics := infraMetrics.NewGatewayProm("overmind")

	wfStore, err := workflow.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to Redis for workflow store: %v", err)
	}
	defer wfStore.Close()

	logStore, err := workflow.NewRedisLogStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to Redis for log store: %v", err)
	}
	defer logStore.Close()

	trendStore, err := trends.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to Redis for trend store: %v", err)
	}
	defer trendStore.Close()

	var natsBus *bus.NatsBus
	if cfg.DisableBus {
		log.Println("event bus disabled, decision log will not be mirrored")
	} else {
		natsBus, err = bus.NewNatsBus(cfg.NatsURL)
		if err != nil {
			log.Fatalf("failed to connect to NATS: %v", err)
		}
		defer natsBus.Close()
		logStore.WithBus(natsBus)
	}

	state := agentstate.New()
	registry := steps.NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var scraper *trends.Scraper
	if cfg.DisableTrendFetch {
		log.Println("trend detection disabled")
	} else {
		scraper = trends.NewScraper(cfg.TrendSourceURL)
		go runTrendLoop(ctx, scraper, trendStore, schedCfg)
	}

	engine := agent.NewEngine(wfStore, logStore, registry, state, agentMetrics, trendStore, schedCfg, agent.NewClock())
	go engine.Run(ctx)

	server := gateway.New(gateway.Options{
		Workflows: wfStore,
		Logs:      logStore,
		Trends:    trendStore,
		Scraper:   scraper,
		State:     state,
		Bus:       natsBus,
		Metrics:   gatewayMetrics,
	})
	go func() {
		if err := server.Start(cfg.HTTPAddr, cfg.MetricsAddr); err != nil {
			log.Fatalf("http server error: %v", err)
		}
	}()

	log.Println("agent running. waiting for signals...")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("agent shutting down")
	cancel()
}

// runTrendLoop refreshes trends on an interval, backing off after
// source errors so a rate-limited feed is not hammered.
func runTrendLoop(ctx context.Context, scraper *trends.Scraper, store *trends.RedisStore, cfg *config.SchedulerConfig) {
	for {
		delay := time.Duration(cfg.TrendRefreshSeconds) * time.Second
		batch, err := scraper.Fetch(ctx)
		if err != nil {
			log.Printf("trend fetch failed: %v", err)
			delay = time.Duration(cfg.TrendErrorBackoffSeconds) * time.Second
		} else if err := store.SaveTrends(ctx, batch); err != nil {
			log.Printf("trend save failed: %v", err)
		} else if len(batch) > 0 {
			log.Printf("recorded %d trends", len(batch))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
