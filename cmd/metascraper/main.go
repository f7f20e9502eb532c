package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bozzhik/meta-scraper/internal/app"
	"github.com/bozzhik/meta-scraper/internal/config"
	"github.com/bozzhik/meta-scraper/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "metascraper failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	log := logger.New(sugar)

	log.DebugObj("metascraper starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditor, err := app.NewAuditor(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize auditor", "error", err.Error())
		return err
	}

	return auditor.Run(ctx)
}
