// Package main is the entry point for the meltos collaboration server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/meltosdev/meltos/internal/config"
	"github.com/meltosdev/meltos/internal/gateway"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	initLogger()

	configPath := flag.String("config", getEnv("MELTOSD_CONFIG", ""), "Path to TOML server configuration")
	listen := flag.String("listen", getEnv("MELTOSD_LISTEN", ""), "Address to listen on (overrides config)")
	dataDir := flag.String("data-dir", getEnv("MELTOSD_DATA_DIR", ""), "Data directory for room metadata (overrides config)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("meltosd %s (%s)\n", version, commit)
		os.Exit(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load configuration", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "dir", cfg.DataDir, "err", err)
		os.Exit(1)
	}

	gw := gateway.New(cfg.Listen, cfg.Room, cfg.DataDir, slog.Default())

	slog.Info("meltosd starting", "version", version, "listen", "http://"+cfg.Listen, "dataDir", cfg.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("gateway error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutdown initiated")
		stop()
		gw.Shutdown()
	}
}

func initLogger() {
	level := slog.LevelInfo
	switch getEnv("MELTOSD_LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if getEnv("MELTOSD_LOG_FORMAT", "text") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
