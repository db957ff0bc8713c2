package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/api"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/api/middleware"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/audit"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/config"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/face"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting gatepass API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("template_store", cfg.TemplateStore),
		slog.String("face_detector", cfg.FaceDetector),
		slog.String("embedding_provider", cfg.EmbeddingProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gatePass, err := face.NewGatePass(ctx, cfg, audit.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to wire gatepass: %w", err)
	}
	defer gatePass.Close()

	router := api.NewRouter(logger, &api.Dependencies{
		Service: gatePass.Service,
		Store:   gatePass.Store,
		RateLimit: middleware.RateLimiterConfig{
			Max:    cfg.RateLimitMax,
			Window: cfg.RateLimitWindow,
		},
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")

	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timed out", slog.Duration("timeout", shutdownTimeout))
	}

	logger.Info("server stopped")

	return nil
}
