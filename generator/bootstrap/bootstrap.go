package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/yaron8/telemetry-dashboard/generator/config"
	"github.com/yaron8/telemetry-dashboard/generator/fabric"
	"github.com/yaron8/telemetry-dashboard/generator/portstats"
	"github.com/yaron8/telemetry-dashboard/generator/publish"
	"github.com/yaron8/telemetry-dashboard/generator/service"
	"github.com/yaron8/telemetry-dashboard/generator/stats"
	"github.com/yaron8/telemetry-dashboard/logi"
)

type Bootstrap struct {
	config    *config.Config
	clock     clockwork.Clock
	fabric    *fabric.Fabric
	tracker   *portstats.Tracker
	cache     *stats.SnapshotCache
	publisher publish.Publisher
	apiServer *service.APIServer
	logger    *slog.Logger
}

func NewBootstrap(cfg *config.Config, clock clockwork.Clock) (*Bootstrap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logi.NewLog(&logi.Config{
		LogDir:      cfg.LogDir,
		LogFileName: "generator.log",
		Stdout:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	tracker := portstats.NewTracker()
	cache := stats.NewSnapshotCache(cfg.CacheTTL, clock, tracker.Snapshot)

	var publisher publish.Publisher = publish.Nop{}
	if cfg.Redis.Publish {
		publisher = publish.NewRedisPublisher(publish.NewRedisClient(cfg.Redis), cfg.Redis.Channel)
	}

	return &Bootstrap{
		config: cfg,
		clock:  clock,
		fabric: fabric.New(fabric.Options{
			Switches: cfg.Fabric.Switches,
			Ports:    cfg.Fabric.Ports,
			EchoLoss: cfg.Fabric.EchoLoss,
			Seed:     cfg.Fabric.Seed,
		}),
		tracker:   tracker,
		cache:     cache,
		publisher: publisher,
		apiServer: service.NewAPIServer(cfg, cache),
		logger:    logger,
	}, nil
}

// Start serves clients and emits a snapshot every interval until ctx ends.
// The publisher is closed when Start returns.
func (b *Bootstrap) Start(ctx context.Context) error {
	if closer, ok := b.publisher.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				b.logger.Error("Error closing publisher", "error", err)
			}
		}()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.apiServer.Start(ctx)
	})

	g.Go(func() error {
		return b.run(ctx)
	})

	return g.Wait()
}

func (b *Bootstrap) run(ctx context.Context) error {
	ticker := b.clock.NewTicker(b.config.Interval)
	defer ticker.Stop()

	b.logger.Info("Generator running",
		"interval", b.config.Interval,
		"switches", b.config.Fabric.Switches,
		"ports", b.config.Fabric.Ports,
		"redis_publish", b.config.Redis.Publish)

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.Chan():
			if err := b.Tick(ctx, now); err != nil {
				return err
			}
		}
	}
}

// Tick polls the fabric and sends one snapshot to every consumer.
// Delivery failures are logged; only an encoding failure is returned.
func (b *Bootstrap) Tick(ctx context.Context, now time.Time) error {
	b.fabric.Poll(b.tracker, now)

	snapshot, err := b.cache.Refresh()
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	if b.apiServer.Hub().Clients() > 0 {
		queued := b.apiServer.Hub().Broadcast(snapshot.JSON)
		b.logger.Debug("snapshot broadcast", "clients", queued, "ports", len(snapshot.Message.Stats))
	}

	if err := b.publisher.Publish(ctx, snapshot.JSON); err != nil {
		b.logger.Error("Error publishing snapshot", "error", err)
	}

	return nil
}
