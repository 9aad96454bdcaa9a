package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/meteowatch/kindex-forecast/internal/adapter/http"
	kafkaadapter "github.com/meteowatch/kindex-forecast/internal/adapter/kafka"
	"github.com/meteowatch/kindex-forecast/internal/adapter/meteoagent"
	"github.com/meteowatch/kindex-forecast/internal/config"
	"github.com/meteowatch/kindex-forecast/internal/coordinator"
	"github.com/meteowatch/kindex-forecast/internal/observability"
	"github.com/meteowatch/kindex-forecast/internal/scheduler"
	"github.com/meteowatch/kindex-forecast/internal/sensor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	fetcher := meteoagent.NewClient(cfg.ForecastURL, cfg.FetchTimeout, logger)
	coord := coordinator.New(fetcher, cfg.ForecastDays, logger, metrics)
	sensors := sensor.ForHorizon(coord, cfg.ForecastDays)

	srv := httpadapter.NewServer(cfg.HTTPAddr, coord, coord, sensors, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional Kafka fan-out of published snapshots (KAFKA_ENABLED / KAFKA_BROKERS).
	var notifier *kafkaadapter.Notifier
	if cfg.KafkaEnabled {
		notifier = kafkaadapter.NewNotifier(cfg, logger)
		events, unsubscribe := coord.Subscribe()
		defer unsubscribe()
		go notifier.Run(ctx, events)
		logger.Info("kafka notifier enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka notifier disabled")
	}

	// First refresh at startup so sensors have data before the first tick.
	// A failure here is not fatal: the previous-snapshot semantics simply
	// start empty and the next tick retries.
	refreshCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	if _, err := coord.Refresh(refreshCtx); err != nil {
		logger.Warn("initial refresh failed", "error", err)
	}
	cancel()

	sched := scheduler.New(coord, cfg.FetchInterval, cfg.FetchTimeout, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if notifier != nil {
		if err := notifier.Close(); err != nil {
			logger.Error("kafka notifier close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
