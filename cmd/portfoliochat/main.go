// Package main is the entry point for the portfolio chat server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfoliochat/config"
	"portfoliochat/internal/app"
	"portfoliochat/internal/logging"
	"portfoliochat/internal/version"
)

const shutdownTimeout = 30 * time.Second

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownOnSignal shuts s down after the first value on quit. The returned
// channel is closed once Shutdown has returned.
func shutdownOnSignal(s shutdowner, quit <-chan os.Signal, timeout time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()
	return done
}

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Config is loaded before logging so the log format can come from it;
	// failures here go to a plain JSON logger.
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Format: cfg.Logging.Format,
		Level:  cfg.Logging.Level,
	}, os.Stdout)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("invalid logging config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	slog.Info("starting portfoliochat",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	done := shutdownOnSignal(application, quit, shutdownTimeout)

	if err := application.Start(":" + cfg.Server.Port); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	// Start returns as soon as the listener closes; wait for the rest
	// of the shutdown to finish.
	<-done
}
