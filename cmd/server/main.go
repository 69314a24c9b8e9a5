// Package main is the entry point for the Marko HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/app"
	"github.com/Takita08/Marko-Docu-Ai/internal/server"
	"github.com/Takita08/Marko-Docu-Ai/internal/session"
)

func main() {
	// We call run() separately so deferred cleanup functions execute properly
	// (deferred functions don't run when os.Exit is called directly).
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := app.LoadConfig(os.Getenv(app.ConfigPathEnv))
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	// Sync commonly fails on stdout/stderr, which is not a real problem.
	defer func() { _ = logger.Sync() }()

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sessions, err := session.NewStore(a.Analyzer, cfg.Session.MaxSessions, logger)
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}

	srv := server.New(cfg, server.Deps{
		Analyzer: a.Analyzer,
		Sessions: sessions,
		Calls:    a.Calls,
	}, logger)

	// Graceful shutdown: listen for SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// In-flight analyses can take as long as the AI request timeout.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.RequestTimeout+10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
