package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/khetsetu/agri-market-service/internal/adapter/datagov"
	"github.com/khetsetu/agri-market-service/internal/adapter/httpapi"
	kafkaadapter "github.com/khetsetu/agri-market-service/internal/adapter/kafka"
	"github.com/khetsetu/agri-market-service/internal/auth"
	"github.com/khetsetu/agri-market-service/internal/config"
	"github.com/khetsetu/agri-market-service/internal/observability"
	"github.com/khetsetu/agri-market-service/internal/pipeline"
	"github.com/khetsetu/agri-market-service/internal/query"
	"github.com/khetsetu/agri-market-service/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	client := datagov.NewClient(cfg, metrics, logger)
	store := snapshot.NewStore(cfg.DataDir, logger)

	// Publishing is feature-flagged via KAFKA_BROKERS.
	var publisher pipeline.Publisher
	var publisherCloser *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisherCloser = kafkaadapter.NewPublisher(cfg, logger)
		publisher = publisherCloser
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(client, store, publisher, cfg.DataGovResources, cfg.RetentionDays, clock, logger, metrics)
	scheduler := pipeline.NewScheduler(p, cfg.PipelineHour, clock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	districts := client.FetchDistrictIndex(ctx, cfg.LookupTimeout)

	engine := query.NewEngine(store, clock, metrics)
	users := auth.NewStore(clock)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, clock)

	srv := httpapi.NewServer(cfg.HTTPAddr, cfg.StaticDir, engine, users, tokens, districts, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run immediately when today's snapshot is missing, then hand off to the
	// daily schedule.
	go func() {
		p.RunIfMissing(ctx)
		scheduler.Run(ctx)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisherCloser != nil {
		if err := publisherCloser.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
