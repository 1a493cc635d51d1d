package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/justbelka/VSFI2024/internal/application/factories/infrastructure"
	"github.com/justbelka/VSFI2024/internal/config"
	"github.com/justbelka/VSFI2024/internal/infrastructure/kafka"
	"github.com/justbelka/VSFI2024/internal/infrastructure/postgres"
	"github.com/justbelka/VSFI2024/internal/ingest"
	"github.com/justbelka/VSFI2024/internal/query"
	"github.com/justbelka/VSFI2024/internal/web"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Infrastructure (Postgres)
	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	if err := postgres.Migrate(ctx, pgPool); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(pgPool)

	// Kafka Consumer
	kafkaConsumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()

	consumer := ingest.New(kafkaConsumer, eventRepo, logger)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Run(ctx); err != nil {
			logger.Error("ingestion consumer failed", "error", err)
		}
	}()

	// Web
	handlers, err := web.NewHandlers(query.NewService(eventRepo), pgPool, logger)
	if err != nil {
		logger.Error("failed to build handlers", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: web.NewRouter(handlers),
	}

	go func() {
		logger.Info("Server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		logger.Error("ingestion consumer did not stop in time")
	}

	logger.Info("Server exiting")
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
