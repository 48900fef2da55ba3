package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yaron8/telemetry-dashboard/generator/bootstrap"
	"github.com/yaron8/telemetry-dashboard/generator/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap, err := bootstrap.NewBootstrap(config.NewConfig(), nil)
	if err != nil {
		panic(fmt.Sprintf("Failed to create generator bootstrap: %v", err))
	}

	if err := bootstrap.Start(ctx); err != nil {
		panic(fmt.Sprintf("Failed to start generator: %v", err))
	}
}
