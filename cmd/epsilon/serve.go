package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/epsilon/internal/config"
	httpAdapter "github.com/aretw0/epsilon/pkg/adapters/http"
	"github.com/aretw0/epsilon/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/epsilon/pkg/adapters/redis"
	"github.com/aretw0/epsilon/pkg/observability"
	"github.com/aretw0/epsilon/pkg/persistence/middleware"
	"github.com/aretw0/epsilon/pkg/ports"
	"github.com/aretw0/epsilon/pkg/region"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the sequencer as a JSON API with a server-sent event stream,
a Mermaid endpoint, IP geolocation and per-client language preferences.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		autoplay, _ := cmd.Flags().GetBool("autoplay")
		return runServe(cfg, autoplay)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().Bool("autoplay", false, "Start the animation as soon as the server is up")
}

func runServe(cfg *config.Config, autoplay bool) error {
	logger := newLogger(cfg)

	// Lifetime of the server and of every timer started through it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	engine, err := newEngine(ctx, cfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("initializing sequencer: %w", err)
	}
	defer engine.Close()

	store, closeStore, err := newPreferenceStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []httpAdapter.Option{
		httpAdapter.WithBaseContext(ctx),
		httpAdapter.WithMetricsHandler(metrics.Handler()),
		httpAdapter.WithLogger(logger),
	}
	var locator region.Locator
	if !cfg.Region.Disabled {
		detector := region.NewDetector(
			region.WithEndpoint(cfg.Region.Endpoint),
			region.WithTimeout(cfg.Region.Timeout),
			region.WithLogger(logger),
		)
		locator = detector
		opts = append(opts, httpAdapter.WithLocator(detector))
	}
	resolver := region.NewResolver(store, locator,
		region.WithFallback(cfg.Locale.Default),
		region.WithResolverLogger(logger),
	)
	opts = append(opts, httpAdapter.WithResolver(resolver))

	handler, release := httpAdapter.NewHandler(engine, opts...)
	defer release()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Epsilon Server", "addr", srv.Addr, "epsilon", cfg.Epsilon, "interval", cfg.Interval)
		serverErrors <- srv.ListenAndServe()
	}()

	if autoplay {
		engine.Play(ctx)
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Shutdown signal received")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				logger.Error("Error killing server", "error", err)
			}
		}
		logger.Info("Epsilon Server stopped gracefully")
		return nil
	}
}

// newPreferenceStore picks Redis when an address is configured, memory otherwise.
func newPreferenceStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.PreferenceStore, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Info("Using in-memory preference store", "ttl", cfg.Preference.TTL)
		store, err := protect(memory.NewStore(memory.WithTTL(cfg.Preference.TTL)), cfg, logger)
		return store, func() {}, err
	}

	opts := []redisAdapter.Option{redisAdapter.WithTTL(cfg.Preference.TTL)}
	if cfg.Redis.Prefix != "" {
		opts = append(opts, redisAdapter.WithPrefix(cfg.Redis.Prefix))
	}
	store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("Using redis preference store", "addr", cfg.Redis.Addr, "ttl", cfg.Preference.TTL)

	protected, err := protect(store, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return protected, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Closing redis store failed", "error", err)
		}
	}, nil
}

// protect applies pseudonymous ids and value encryption when a secret is configured.
func protect(store ports.PreferenceStore, cfg *config.Config, logger *slog.Logger) (ports.PreferenceStore, error) {
	if cfg.Preference.Secret == "" {
		return store, nil
	}
	protected, err := middleware.Protect(store, cfg.Preference.Secret)
	if err != nil {
		return nil, fmt.Errorf("preference protection: %w", err)
	}
	logger.Info("Preference store protected", "ids", "hmac-sha256", "values", "aes-256-gcm")
	return protected, nil
}
