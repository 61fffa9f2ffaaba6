package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/taskhub/internal/app"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/observability"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config invalid", "err", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, log)

	startCtx, cancelStart := context.WithTimeout(ctx, 30*time.Second)
	err = a.Start(startCtx)
	cancelStart()

	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}

	exitCode := 0

	select {
	case <-ctx.Done():
		log.Info("server shutting down")
	case err, ok := <-a.Done():
		if ok && err != nil {
			log.Error("server failed", "err", err)
			exitCode = 1
		}
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Stop(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		exitCode = 1
	} else {
		log.Info("shutdown complete")
	}

	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
