package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AgentMetrics captures control-loop metrics for the agent engine.
type AgentMetrics interface {
	IncTicks()
	IncTickErrors()
	IncStepsExecuted(status string)
	IncWorkflowStarted(workflowType string)
	IncWorkflowCompleted(workflowType, status string)
	SetRunningWorkflows(n int)
}

// GatewayMetrics captures request metrics for the HTTP gateway.
type GatewayMetrics interface {
	ObserveRequest(method, route, status string, durationSeconds float64)
}

// Noop implements AgentMetrics without emitting anything.
type Noop struct{}

func (Noop) IncTicks()                           {}
func (Noop) IncTickErrors()                      {}
func (Noop) IncStepsExecuted(string)             {}
func (Noop) IncWorkflowStarted(string)           {}
func (Noop) IncWorkflowCompleted(string, string) {}
func (Noop) SetRunningWorkflows(int)             {}

// NoopGateway implements GatewayMetrics without emitting anything.
type NoopGateway struct{}

func (NoopGateway) ObserveRequest(string, string, string, float64) {}

// Prom implements AgentMetrics backed by Prometheus collectors.
type Prom struct {
	ticks      prometheus.Counter
	tickErrors prometheus.Counter
	steps      *prometheus.CounterVec
	started    *prometheus.CounterVec
	completed  *prometheus.CounterVec
	running    prometheus.Gauge
	once       sync.Once
}

func NewProm(namespace string) *Prom {
	p := &Prom{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Control loop ticks executed",
		}),
		tickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_errors_total",
			Help:      "Control loop ticks aborted on store errors",
		}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_executed_total",
			Help:      "Workflow steps executed by result status",
		}, []string{"status"}),
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflows_started_total",
			Help:      "Workflows admitted to running by type",
		}, []string{"type"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflows_completed_total",
			Help:      "Workflows finished by type and terminal status",
		}, []string{"type", "status"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workflows_running",
			Help:      "Workflows currently running",
		}),
	}
	p.register()
	return p
}

func (p *Prom) register() {
	p.once.Do(func() {
		prometheus.MustRegister(p.ticks, p.tickErrors, p.steps, p.started, p.completed, p.running)
	})
}

func (p *Prom) IncTicks()      { p.ticks.Inc() }
func (p *Prom) IncTickErrors() { p.tickErrors.Inc() }

func (p *Prom) IncStepsExecuted(status string) {
	p.steps.WithLabelValues(status).Inc()
}

func (p *Prom) IncWorkflowStarted(workflowType string) {
	p.started.WithLabelValues(workflowType).Inc()
}

func (p *Prom) IncWorkflowCompleted(workflowType, status string) {
	p.completed.WithLabelValues(workflowType, status).Inc()
}

func (p *Prom) SetRunningWorkflows(n int) {
	p.running.Set(float64(n))
}

// Handler returns an HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// --- Gateway metrics ---

type gatewayProm struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	once     sync.Once
}

// NewGatewayProm constructs a GatewayMetrics with counters/histograms.
func NewGatewayProm(namespace string) GatewayMetrics {
	g := &gatewayProm{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	g.once.Do(func() {
		prometheus.MustRegister(g.requests, g.latency)
	})
	return g
}

func (g *gatewayProm) ObserveRequest(method, route, status string, durationSeconds float64) {
	g.requests.WithLabelValues(method, route, status).Inc()
	g.latency.WithLabelValues(method, route).Observe(durationSeconds)
}
