// Package main is the entry point for the internal costing console.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/config"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("costing-console %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == config.LogFormatJSON {
		logger.SetJSON()
	}
	logger.InitHashSalt()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	c, closeFn, err := newConsole(ctx, cfg, os.Stdout)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer closeFn()

	if err := c.run(ctx, os.Args[1:]); err != nil {
		closeFn()
		logger.Log.Fatal().Err(err).Msg("Command failed")
	}
}
