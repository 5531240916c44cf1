// Package gateway exposes the agent's REST and WebSocket surface.
package gateway

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/overmind-ai/overmind/core/agentstate"
	"github.com/overmind-ai/overmind/core/infra/bus"
	"github.com/overmind-ai/overmind/core/infra/logging"
	infraMetrics "github.com/overmind-ai/overmind/core/infra/metrics"
	"github.com/overmind-ai/overmind/core/trends"
	"github.com/overmind-ai/overmind/core/workflow"
)

const component = "gateway"

// Options carries the collaborators the server exposes.
type Options struct {
	Workflows *workflow.RedisStore
	Logs      *workflow.RedisLogStore
	Trends    *trends.RedisStore
	Scraper   *trends.Scraper
	State     *agentstate.State
	Bus       *bus.NatsBus
	Metrics   infraMetrics.GatewayMetrics
}

// Server serves the agent API and fans bus events out to WS clients.
type Server struct {
	workflows *workflow.RedisStore
	logs      *workflow.RedisLogStore
	trends    *trends.RedisStore
	scraper   *trends.Scraper
	state     *agentstate.State
	bus       *bus.NatsBus
	metrics   infraMetrics.GatewayMetrics
	started   time.Time

	clients   map[*websocket.Conn]chan json.RawMessage
	clientsMu sync.RWMutex
	eventsCh  chan json.RawMessage
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// New builds a server; Start wires the bus tap and listens.
func New(opts Options) *Server {
	m := opts.Metrics
	if m == nil {
		m = infraMetrics.NoopGateway{}
	}
	return &Server{
		workflows: opts.Workflows,
		logs:      opts.Logs,
		trends:    opts.Trends,
		scraper:   opts.Scraper,
		state:     opts.State,
		bus:       opts.Bus,
		metrics:   m,
		started:   time.Now().UTC(),
		clients:   map[*websocket.Conn]chan json.RawMessage{},
		eventsCh:  make(chan json.RawMessage, 512),
	}
}

// Start blocks serving the API; the metrics endpoint gets its own
// listener so scrapes never contend with API traffic.
func (s *Server) Start(httpAddr, metricsAddr string) error {
	s.startEventFanout()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", infraMetrics.Handler())
	go func() {
		srv := &http.Server{
			Addr:         metricsAddr,
			Handler:      metricsMux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		logging.Info(component, "metrics listening", "addr", metricsAddr+"/metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error(component, "metrics server error", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logging.Info(component, "http listening", "addr", httpAddr)
	return srv.ListenAndServe()
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/v1/agent/status", s.instrumented("/api/v1/agent/status", s.handleAgentStatus))
	mux.HandleFunc("GET /api/v1/agent/logs", s.instrumented("/api/v1/agent/logs", s.handleAgentLogs))

	mux.HandleFunc("GET /api/v1/workflows", s.instrumented("/api/v1/workflows", s.handleListWorkflows))
	mux.HandleFunc("POST /api/v1/workflows", s.instrumented("/api/v1/workflows", s.handleCreateWorkflow))
	mux.HandleFunc("GET /api/v1/workflows/{id}", s.instrumented("/api/v1/workflows/{id}", s.handleGetWorkflow))
	mux.HandleFunc("PUT /api/v1/workflows/{id}/status", s.instrumented("/api/v1/workflows/{id}/status", s.handleSetWorkflowStatus))

	mux.HandleFunc("GET /api/v1/trends", s.instrumented("/api/v1/trends", s.handleListTrends))
	mux.HandleFunc("POST /api/v1/trends/refresh", s.instrumented("/api/v1/trends/refresh", s.handleRefreshTrends))

	mux.HandleFunc("GET /api/v1/revenue/opportunities", s.instrumented("/api/v1/revenue/opportunities", s.handleListOpportunities))
	mux.HandleFunc("POST /api/v1/revenue/opportunities/{id}/workflow", s.instrumented("/api/v1/revenue/opportunities/{id}/workflow", s.handleCreateTemplateWorkflow))
	mux.HandleFunc("GET /api/v1/revenue/stats", s.instrumented("/api/v1/revenue/stats", s.handleRevenueStats))
	mux.HandleFunc("GET /api/v1/revenue/next-actions", s.instrumented("/api/v1/revenue/next-actions", s.handleNextActions))

	mux.HandleFunc("GET /api/v1/dashboard/stats", s.instrumented("/api/v1/dashboard/stats", s.handleDashboardStats))

	mux.HandleFunc("/api/v1/events", s.instrumented("/api/v1/events", s.handleEvents))

	return mux
}

// startEventFanout taps decision-log events off the bus and broadcasts
// them to connected WS clients, evicting clients that cannot keep up.
func (s *Server) startEventFanout() {
	if s.bus != nil {
		if err := s.bus.Subscribe(workflow.SubjectLog, "", func(data []byte) error {
			select {
			case s.eventsCh <- json.RawMessage(data):
			default:
			}
			return nil
		}); err != nil {
			logging.Error(component, "bus subscribe failed", "subject", workflow.SubjectLog, "error", err)
		}
	}

	go func() {
		for evt := range s.eventsCh {
			var slowClients []*websocket.Conn
			s.clientsMu.RLock()
			for conn, ch := range s.clients {
				select {
				case ch <- evt:
				default:
					slowClients = append(slowClients, conn)
				}
			}
			s.clientsMu.RUnlock()

			for _, conn := range slowClients {
				logging.Info(component, "evicting slow ws client")
				s.dropClient(conn)
			}
		}
	}()
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error(component, "ws upgrade failed", "error", err)
		return
	}
	ch := make(chan json.RawMessage, 64)
	s.clientsMu.Lock()
	s.clients[conn] = ch
	s.clientsMu.Unlock()

	defer s.dropClient(conn)

	// Reader only to observe close; clients never send payloads.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.dropClient(conn)
				return
			}
		}
	}()

	for evt := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, evt); err != nil {
			return
		}
	}
}

// dropClient unregisters a WS client and closes its channel so the
// writer loop terminates. Safe to call from several goroutines: only
// the caller that removes the map entry closes anything. Events are
// only sent under the read lock, so no send can race the close.
func (s *Server) dropClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	ch, ok := s.clients[conn]
	if ok {
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()
	if !ok {
		return
	}
	close(ch)
	_ = conn.Close()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps WebSocket upgrades working through the metrics wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// instrumented wraps handlers to record request metrics.
func (s *Server) instrumented(route string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fn(rec, r)
		s.metrics.ObserveRequest(r.Method, route, fmt.Sprintf("%d", rec.status), time.Since(start).Seconds())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error(component, "encode response", "error", err)
	}
}
