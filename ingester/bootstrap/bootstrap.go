package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/yaron8/telemetry-dashboard/dashboard"
	"github.com/yaron8/telemetry-dashboard/ingester/config"
	"github.com/yaron8/telemetry-dashboard/ingester/render"
	"github.com/yaron8/telemetry-dashboard/ingester/service"
	"github.com/yaron8/telemetry-dashboard/ingester/source"
	"github.com/yaron8/telemetry-dashboard/logi"
)

type Bootstrap struct {
	config    *config.Config
	dashboard *dashboard.Dashboard
	source    source.Source
	apiServer *service.APIServer
	logger    *slog.Logger
}

func NewBootstrap(cfg *config.Config) (*Bootstrap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logi.NewLog(&logi.Config{
		LogDir:      cfg.LogDir,
		LogFileName: "ingester.log",
		Stdout:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	frames := render.NewFrameStore()
	dash := dashboard.New(dashboard.Options{
		WindowSize:     cfg.WindowSize,
		BarSurface:     render.NewBarSurface(frames),
		LatencySurface: render.NewLatencySurface(frames),
	})

	src, err := source.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	return &Bootstrap{
		config:    cfg,
		dashboard: dash,
		source:    src,
		apiServer: service.NewAPIServer(cfg, dash, frames),
		logger:    logger,
	}, nil
}

// Start runs the HTTP server and the source until ctx ends or either fails.
// Resources held by the source are released when Start returns.
func (b *Bootstrap) Start(ctx context.Context) error {
	if closer, ok := b.source.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				b.logger.Error("Error closing source", "error", err)
			}
		}()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.apiServer.Start(ctx)
	})

	g.Go(func() error {
		b.logger.Info("Connecting to measurement source",
			"source", b.config.Source.Kind,
			"url", b.config.Source.URL,
			"window", b.config.WindowSize)
		if err := b.source.Run(ctx, b.dashboard); err != nil {
			return fmt.Errorf("source stopped: %w", err)
		}
		b.logger.Info("Measurement source closed")
		return nil
	})

	return g.Wait()
}
