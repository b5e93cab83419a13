package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"mtasks/internal/daemon"
	"mtasks/internal/di"
	"mtasks/internal/infrastructure/config"
	"mtasks/internal/infrastructure/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mtasksd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("failed to create config loader: %w", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// lifecycle messages are always shown
	logger := logging.New(cfg.Logging.Level)
	if logger.GetLevel() > zerolog.InfoLevel {
		logger = logger.Level(zerolog.InfoLevel)
	}

	// The daemon serves a local backend; it cannot front another daemon
	backend := cfg.Daemon.Backend
	if backend == config.BackendDaemon {
		return fmt.Errorf("daemon.backend must name a local backend, not %q", backend)
	}

	repo, cleanup, err := di.OpenLocalRepository(cfg, backend, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", backend, err)
	}
	defer cleanup()

	server := daemon.NewServer(repo, daemon.GetSocketPath(cfg), logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	logger.Info().Str("backend", backend).Msg("mtasks daemon started")

	// Wait for shutdown signal or error
	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case serveErr = <-errChan:
		logger.Error().Err(serveErr).Msg("server error")
	}

	if err := server.Stop(); err != nil {
		logger.Error().Err(err).Msg("error stopping server")
	}
	return serveErr
}
