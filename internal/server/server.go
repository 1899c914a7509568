package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/ics"
	"github.com/teemow/meetsched/internal/schedule"
)

const (
	// DefaultReadHeaderTimeout bounds header reads on the API server.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultIdleTimeout is the keep-alive idle timeout for the API server.
	DefaultIdleTimeout = 60 * time.Second
)

// Engine is the booking engine surface the HTTP layer depends on.
type Engine interface {
	Policy() schedule.Policy
	Owner() schedule.Owner
	AvailableDates(year int, month time.Month) []string
	AvailableSlots(ctx context.Context, date schedule.Date) ([]schedule.SlotOffer, error)
	CheckSlot(ctx context.Context, start, end time.Time) (bool, error)
	Book(ctx context.Context, req schedule.Request) (*schedule.Confirmation, error)
}

// Authenticator is the owner-credential surface the HTTP layer depends on.
type Authenticator interface {
	Connected() bool
	AuthURL() string
	Exchange(ctx context.Context, code string) error
	Disconnect() error
}

// Config holds the dependencies for the API server.
type Config struct {
	Addr      string
	Engine    Engine
	Auth      Authenticator
	Formatter *ics.Formatter
	Logger    *slog.Logger
	Metrics   *instrumentation.Metrics
}

// Server exposes the scheduler over HTTP: the booking API, the owner's
// OAuth setup pages, and health endpoints. Prometheus metrics are served
// separately by MetricsServer.
type Server struct {
	engine     Engine
	auth       Authenticator
	formatter  *ics.Formatter
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	httpServer *http.Server
	shutdown   atomic.Bool
}

// New creates the API server.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Auth == nil {
		return nil, fmt.Errorf("authenticator is required")
	}
	if cfg.Formatter == nil {
		cfg.Formatter = ics.NewFormatter()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		engine:    cfg.Engine,
		auth:      cfg.Auth,
		formatter: cfg.Formatter,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	return s, nil
}

// routes builds the API mux with CORS and request logging applied.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /auth/setup", s.handleAuthSetup)
	mux.HandleFunc("GET /auth/callback", s.handleAuthCallback)
	mux.HandleFunc("GET /auth/disconnect", s.handleAuthDisconnect)

	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/available-dates", s.handleAvailableDates)
	mux.HandleFunc("GET /api/availability", s.handleAvailability)
	mux.HandleFunc("POST /api/check-slot", s.handleCheckSlot)
	mux.HandleFunc("POST /api/book", s.handleBook)

	health := NewHealthChecker(s)
	health.RegisterHealthEndpoints(mux)

	return s.corsMiddleware(s.requestMiddleware(mux))
}

// Start serves HTTP in a blocking manner until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting api server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully drains the server. In-flight provider calls run to
// completion so an issued booking is never silently lost.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdown.Store(true)
	s.logger.Info("shutting down api server")
	return s.httpServer.Shutdown(ctx)
}

// IsShutdown reports whether shutdown has begun.
func (s *Server) IsShutdown() bool {
	return s.shutdown.Load()
}
