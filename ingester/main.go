package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yaron8/telemetry-dashboard/ingester/bootstrap"
	"github.com/yaron8/telemetry-dashboard/ingester/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.NewConfig()

	cmd := &cobra.Command{
		Use:           "ingester",
		Short:         "Live dashboard of per-port bandwidth and per-switch latency",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := bootstrap.NewBootstrap(cfg)
			if err != nil {
				return fmt.Errorf("failed to create ingester bootstrap: %w", err)
			}
			return b.Start(ctx)
		},
	}

	// flags override the environment
	flags := cmd.Flags()
	flags.IntVar(&cfg.Port, "port", cfg.Port, "HTTP port of the dashboard")
	flags.StringVar(&cfg.Source.Kind, "source", cfg.Source.Kind, "measurement source: ws or redis")
	flags.StringVar(&cfg.Source.URL, "source-url", cfg.Source.URL, "websocket URL of the measurement source")
	flags.IntVar(&cfg.WindowSize, "window", cfg.WindowSize, "points kept per latency series")
	flags.StringVar(&cfg.Redis.Channel, "redis-channel", cfg.Redis.Channel, "redis channel carrying snapshots")
	flags.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory of the log file")

	return cmd
}
