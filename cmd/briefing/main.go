package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-news-briefing/internal/app"
	"github.com/samvad-hq/samvad-news-briefing/internal/config"
	"github.com/samvad-hq/samvad-news-briefing/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "briefing start failed: %v\n", err)
		os.Exit(1)
	}
}

// run fails only on configuration problems; a completed run always exits zero.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("briefing starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	briefing, err := app.NewBriefing(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize briefing", "error", err)
		return err
	}

	summary, err := briefing.Run(ctx)
	if err != nil {
		return fmt.Errorf("briefing run: %w", err)
	}
	logger.InfoObj("briefing finished", "run_summary", summary)
	return nil
}
