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
		fmt.Fprintf(os.Stderr, "fetcher start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	forceRefresh := flag.Bool("refresh", false, "ignore pool freshness and re-fetch all sources")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	defer logger.Sync(log)

	log.InfoObj("fetcher starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher, err := app.NewFetcher(cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize fetcher", "error", err.Error())
		return err
	}

	if err := fetcher.Run(ctx, *forceRefresh); err != nil {
		return fmt.Errorf("fetcher run: %w", err)
	}

	return nil
}
