package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"parttime-match/internal/app"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, websocket push and background recomputation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	cfg, lg, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap, cleanup, err := app.Bootstrap(ctx, cfg, lg)
	if err != nil {
		lg.Error("failed to bootstrap app", zap.Error(err))
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			lg.Warn("cleanup error", zap.Error(err))
		}
	}()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		lg.Error("invalid HTTP port", zap.Error(err))
		return err
	}

	if err := bootstrap.StartBackground(ctx); err != nil {
		lg.Error("failed to start background workers", zap.Error(err))
		return err
	}

	lg.Info("starting server",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Environment),
		zap.String("storage", cfg.Database.Driver),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- bootstrap.Fiber.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			lg.Error("server error", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
			lg.Warn("shutdown error", zap.Error(err))
		}
	}
	return nil
}
