package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/epsilon"
	"github.com/aretw0/epsilon/internal/config"
	"github.com/aretw0/epsilon/internal/runtime"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/observability"
)

// newCatalog loads the embedded strings and applies the override directory.
func newCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*locale.Catalog, error) {
	catalog, err := locale.New(locale.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if cfg.Locale.Dir != "" {
		if err := catalog.ApplyOverrides(ctx, cfg.Locale.Dir); err != nil {
			return nil, fmt.Errorf("locale overrides: %w", err)
		}
		logger.Info("Locale overrides applied", "dir", cfg.Locale.Dir)
	}
	return catalog, nil
}

// newEngine wires the sequencer from the configuration. metrics may be nil.
func newEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*epsilon.Engine, error) {
	catalog, err := newCatalog(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []epsilon.Option{
		epsilon.WithEpsilon(cfg.Epsilon),
		epsilon.WithInterval(cfg.Interval),
		epsilon.WithLoop(cfg.Loop),
		epsilon.WithCatalog(catalog),
		epsilon.WithLogger(logger),
	}
	if cfg.Seed != 0 {
		opts = append(opts, epsilon.WithRandom(runtime.Seeded(cfg.Seed)))
	}
	if metrics != nil {
		opts = append(opts, epsilon.WithMetrics(metrics))
	}
	return epsilon.New(opts...)
}
