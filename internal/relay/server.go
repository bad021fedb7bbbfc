package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/myo-osc/internal/infrastructure/config"
)

const (
	// gracefulShutdownTimeout bounds Close.
	gracefulShutdownTimeout = 5 * time.Second

	readHeaderTimeout = 10 * time.Second
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps holds the collaborators of a Server.
type Deps struct {
	// Config is the relay section of the service configuration.
	Config config.RelayConfig

	// Hub receives messages from the dispatcher. Created if nil.
	Hub *Hub

	// Metrics is served on /metrics when set.
	Metrics http.Handler

	// Checks are run by /health, keyed by name (e.g. "mqtt").
	Checks map[string]HealthCheck

	// Target returns the current OSC destination for /health.
	Target func() string

	// Version is reported by /health.
	Version string

	Logger Logger
}

// Server serves the relay routes.
type Server struct {
	cfg     config.RelayConfig
	hub     *Hub
	metrics http.Handler
	checks  map[string]HealthCheck
	target  func() string
	version string
	logger  Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
}

// New creates a relay server. It does not listen until Start.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	hub := deps.Hub
	if hub == nil {
		hub = NewHub(logger, nil)
	}
	return &Server{
		cfg:     deps.Config,
		hub:     hub,
		metrics: deps.Metrics,
		checks:  deps.Checks,
		target:  deps.Target,
		version: deps.Version,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Listeners are dashboards on the local network.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Hub returns the hub fed by the dispatcher.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start listens on the configured address and serves in the background.
//
// Parameters:
//   - ctx: Parent context; cancelling it disconnects WebSocket clients
//
// Returns:
//   - error: If the address cannot be bound
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("relay listening on %s: %w", addr, err)
	}

	srvCtx, cancel := context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("relay server error", "error", err)
		}
	}()

	s.logger.Info("relay listening", "address", ln.Addr().String(), "path", s.cfg.Path)
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close disconnects clients and shuts the server down, waiting briefly
// for in-flight requests.
func (s *Server) Close() error {
	s.mu.Lock()
	srv, cancel := s.server, s.cancel
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	cancel()

	ctx, done := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer done()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down relay: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server is serving.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("relay health check: %w", ctx.Err())
	default:
	}
	if s.Addr() == "" {
		return ErrNotStarted
	}
	return nil
}

// Handler builds the router. Exposed for tests and embedding.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	path := s.cfg.Path
	if path == "" {
		path = "/ws"
	}
	r.Get(path, s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// handleWebSocket upgrades the request and starts the client pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("relay upgrade failed", "error", err)
		return
	}

	client := newClient(uuid.NewString(), s.hub, conn, r.URL.Query()["address"])
	s.hub.Register(client)
	client.sendResponse(client.id, TypeHello, nil)

	maxSize := int64(s.cfg.MaxMessageSize)
	if maxSize <= 0 {
		maxSize = 4096
	}
	ping := seconds(s.cfg.PingInterval, 30)
	pong := seconds(s.cfg.PongTimeout, 10)

	go client.writePump(ping, pong)
	go client.readPump(maxSize, ping, pong)
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Target  string            `json:"target,omitempty"`
	Clients int               `json:"clients"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// handleHealth runs the dependency checks. Any failure makes the status
// "degraded" with 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
		Clients: s.hub.ClientCount(),
	}
	if s.target != nil {
		resp.Target = s.target()
	}

	if len(s.checks) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp.Checks = make(map[string]string, len(s.checks))
		for name, check := range s.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
