package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillhive-hq/skill-digest/internal/app"
	"github.com/skillhive-hq/skill-digest/internal/config"
	"github.com/skillhive-hq/skill-digest/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "digest start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	once := flag.Bool("once", false, "run a single digest cycle and exit")
	forceRefresh := flag.Bool("refresh", false, "ignore pool freshness and re-fetch all sources")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	defer logger.Sync(log)

	log.InfoObj("digest starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	digest, err := app.NewDigest(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize digest", "error", err.Error())
		return err
	}

	if *once {
		if err := digest.RunOnce(ctx, *forceRefresh); err != nil {
			return fmt.Errorf("digest cycle: %w", err)
		}
		return nil
	}

	if err := digest.Run(ctx); err != nil {
		return fmt.Errorf("digest run: %w", err)
	}

	return nil
}
