package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"deskhand/config"
	"deskhand/systray"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	configPath, _ := config.ConfigPath()
	slog.Info("Configuration loaded", "path", configPath)

	if cfg.API.AccessKey == "" {
		slog.Warn("No API access key configured, backend requests will fail", "path", configPath)
	}

	// Create agent
	agent, err := NewAgent(cfg)
	if err != nil {
		slog.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tray := systray.NewManager(cfg.Web.Port, nil)

	// The tray owns the main goroutine, the agent runs beside it
	go func() {
		if err := agent.Run(ctx); err != nil {
			slog.Error("Agent error", "error", err)
		}
		tray.Stop()
	}()

	go func() {
		select {
		case <-tray.WaitForQuit():
			cancel()
		case <-ctx.Done():
		}
	}()

	tray.Run()

	slog.Info("deskhand stopped")
}
