package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsched/internal/calendar"
	"github.com/teemow/meetsched/internal/config"
	"github.com/teemow/meetsched/internal/google"
	"github.com/teemow/meetsched/internal/ics"
	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/schedule"
	"github.com/teemow/meetsched/internal/server"
)

// scheduler bundles the wired service components shared by the serve,
// mcp and connect commands.
type scheduler struct {
	cfg      config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider
	auth     *google.Manager
	engine   *schedule.Engine
}

// newScheduler loads configuration and wires the token manager, calendar
// handle source and booking engine. quiet suppresses the text log output,
// used by the stdio MCP transport where stdout carries the protocol.
func newScheduler(ctx context.Context, debugMode, quiet bool) (*scheduler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	var logger *slog.Logger
	if quiet {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	tokenFile := cfg.TokenFile
	if tokenFile == "" {
		tokenFile = google.DefaultTokenPath()
	}

	auth := google.NewManager(google.ManagerConfig{
		OAuth: google.OAuthConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
		},
		Store:   google.NewFileStore(tokenFile),
		Logger:  logger,
		Metrics: provider.Metrics(),
	})

	engine := schedule.NewEngine(schedule.EngineConfig{
		Policy:  cfg.Policy,
		Hours:   cfg.Hours,
		Handles: calendar.NewHandleSource(auth, cfg.CalendarID),
		Owner: schedule.Owner{
			Name:  cfg.OwnerName,
			Email: cfg.OwnerEmail,
		},
		Logger:  logger,
		Metrics: provider.Metrics(),
	})

	return &scheduler{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		auth:     auth,
		engine:   engine,
	}, nil
}

func (s *scheduler) shutdown(ctx context.Context) {
	if err := s.provider.Shutdown(ctx); err != nil {
		s.logger.Error("instrumentation shutdown failed", "error", err)
	}
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		addr           string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP booking API",
		Long: `Start the HTTP booking API.

The server exposes the public booking endpoints (/api/config,
/api/available-dates, /api/availability, /api/check-slot, /api/book),
the owner's OAuth setup pages under /auth, and health check endpoints.
Prometheus metrics are served on a dedicated port.

Configuration is read from the environment:
  Required:
    MEETSCHED_OWNER_EMAIL   owner's email address for invites
    GOOGLE_CLIENT_ID        Google OAuth client ID
    GOOGLE_CLIENT_SECRET    Google OAuth client secret
  Optional:
    MEETSCHED_ADDR, MEETSCHED_METRICS_ADDR, MEETSCHED_OWNER_NAME,
    MEETSCHED_CALENDAR_ID, MEETSCHED_REDIRECT_URL, MEETSCHED_TOKEN_FILE,
    MEETSCHED_TIMEZONE, MEETSCHED_WORKING_HOURS,
    MEETSCHED_MAX_DAYS_IN_ADVANCE, MEETSCHED_MIN_HOURS_NOTICE,
    MEETSCHED_MEETING_DURATION, MEETSCHED_SLOT_INTERVAL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(debugMode, addr, metricsEnabled, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides MEETSCHED_ADDR)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Metrics server address (overrides MEETSCHED_METRICS_ADDR)")

	return cmd
}

func runServe(debugMode bool, addr string, metricsEnabled bool, metricsAddr string) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sched, err := newScheduler(shutdownCtx, debugMode, false)
	if err != nil {
		return err
	}
	defer sched.shutdown(context.Background())

	if addr == "" {
		addr = sched.cfg.Addr
	}
	if metricsAddr == "" {
		metricsAddr = sched.cfg.MetricsAddr
	}

	apiServer, err := server.New(server.Config{
		Addr:      addr,
		Engine:    sched.engine,
		Auth:      sched.auth,
		Formatter: ics.NewFormatter(),
		Logger:    sched.logger,
		Metrics:   sched.provider.Metrics(),
	})
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	var metricsServer *server.MetricsServer
	if metricsEnabled && sched.provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: sched.provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil {
				sched.logger.Error("metrics server stopped with error", "error", err)
			}
		}()
		sched.logger.Info("metrics server started", "addr", metricsServer.Addr())
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := apiServer.Start(); err != nil {
			serverDone <- err
		}
	}()

	sched.logger.Info("booking API started",
		"addr", addr,
		"calendar_connected", sched.auth.Connected())
	if !sched.auth.Connected() {
		sched.logger.Warn("calendar not connected; visit /auth/setup to connect",
			"redirect_url", sched.cfg.RedirectURL)
	}

	select {
	case <-shutdownCtx.Done():
		sched.logger.Info("shutdown signal received, stopping servers")
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("API server stopped with error: %w", err)
		}
		return nil
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer stopCancel()

	if err := apiServer.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("error shutting down API server: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			sched.logger.Error("error shutting down metrics server", "error", err)
		}
	}

	// Drain the server goroutine; Start returns nil after Shutdown.
	if err := <-serverDone; err != nil {
		return fmt.Errorf("API server stopped with error: %w", err)
	}

	sched.logger.Info("servers gracefully stopped")
	return nil
}
