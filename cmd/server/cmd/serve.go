package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/thaivisachecklist/server/internal/api"
	"github.com/thaivisachecklist/server/internal/checklist"
	"github.com/thaivisachecklist/server/internal/config"
	"github.com/thaivisachecklist/server/internal/contact"
	"github.com/thaivisachecklist/server/internal/content"
	"github.com/thaivisachecklist/server/internal/email"
	"github.com/thaivisachecklist/server/internal/metrics"
	"github.com/thaivisachecklist/server/internal/reporting"
	"github.com/thaivisachecklist/server/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var (
		// Server flags (override config/env)
		serverHost string
		serverPort int
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin serving the site.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Load the embedded guides, news and checklists
- Serve pages, the 90-day calculator API and the contact endpoint
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug

  # Start with custom config file
  server serve --config /etc/visachecklist/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if serverHost != "" {
				cfg.Server.Host = serverHost
			}
			if serverPort != 0 {
				cfg.Server.Port = serverPort
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")

	return serveCmd
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, err
	}

	// Override logging from flags if provided
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

// buildRouter loads the embedded content and wires every service the
// handlers need.
func buildRouter(cfg config.Config, logger zerolog.Logger) (*api.Router, error) {
	site, err := content.Load()
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	catalog, err := checklist.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load checklists: %w", err)
	}
	mailer, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return nil, fmt.Errorf("email service: %w", err)
	}

	return api.NewRouter(api.Deps{
		Config:     cfg,
		Logger:     logger,
		Build:      buildInfo(),
		Site:       site,
		Catalog:    catalog,
		Contact:    contact.NewService(mailer, logger),
		Calculator: reporting.NewCalculator(nil),
		StartedAt:  time.Now().UTC(),
	})
}

func runServer(ctx context.Context, cfg config.Config) error {
	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Msg("starting server")

	metrics.Init(Version, GitCommit, BuildDate)
	logger.Info().Str("version", Version).Msg("metrics initialized")

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	router, err := buildRouter(cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return err
	}
	defer router.Close()

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Handler,
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return gracefulShutdown(server, router, shutdownTracing, logger)
	})

	return g.Wait()
}

// gracefulShutdown fails readiness first so the load balancer stops routing,
// then drains in-flight requests and flushes pending spans.
func gracefulShutdown(server *http.Server, router *api.Router, shutdownTracing telemetry.Shutdown, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")
	router.Health.SetDraining()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	if tracingErr := shutdownTracing(ctx); tracingErr != nil {
		logger.Error().Err(tracingErr).Msg("tracing shutdown error")
	}

	logger.Info().Msg("server stopped")
	return err
}
