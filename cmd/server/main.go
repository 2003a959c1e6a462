// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

// Command server runs the Swipelab backend: the researcher dashboard
// API and the public participant feed, backed by an embedded DuckDB
// database and supervised by a suture tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swipelab/swipelab/internal/api"
	"github.com/swipelab/swipelab/internal/auth"
	"github.com/swipelab/swipelab/internal/config"
	"github.com/swipelab/swipelab/internal/database"
	"github.com/swipelab/swipelab/internal/logging"
	"github.com/swipelab/swipelab/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Err(err).Msg("Fatal error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Swipelab")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Err(err).Msg("Failed to close database")
		}
	}()

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("failed to initialize authentication: %w", err)
	}

	handler := api.NewHandler(db, jwtManager, cfg)
	router := api.NewRouter(handler, &cfg.Security)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.Add(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.Root().ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("supervisor failed: %w", err)
		}
		return nil
	}

	// Drain the supervisor's final result after cancellation.
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Err(err).Msg("Supervisor shutdown error")
	}

	logging.Info().Msg("Stopped gracefully")
	return nil
}
