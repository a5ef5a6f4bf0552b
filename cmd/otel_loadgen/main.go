package main

import (
	"context"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dash-tools/otel-loadgen/internal/config"
	deliveryService "github.com/dash-tools/otel-loadgen/pkg/delivery/service"
	generatorService "github.com/dash-tools/otel-loadgen/pkg/generator/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.ReadConfig()
	if err != nil {
		logger.Fatal("Failed to read configuration", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	idGenerator := generatorService.NewIdGeneratorImpl()
	spanFactory := generatorService.NewSpanFactory(cfg.MinSpanDuration())

	singleService := generatorService.NewSingleServiceTopologyBuilder(
		spanFactory,
		idGenerator,
		rng,
	)
	interService := generatorService.NewInterServiceTopologyBuilder(
		spanFactory,
		idGenerator,
		cfg.ServicePrefix,
		rng,
	)
	assembler := generatorService.NewTraceBatchAssemblerImpl(
		singleService,
		interService,
		idGenerator,
		rng,
		cfg.BatchParams(),
	)

	sender := deliveryService.NewHttpTraceSenderImpl(cfg.Target, cfg.HttpTimeout())
	loop := deliveryService.NewDeliveryLoop(
		assembler,
		sender,
		cfg.Interval(),
		cfg.TracesPerBatch,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go serveMetrics(cfg.MetricsAddr, logger)

	logger.Info(
		"Starting otel loadgen",
		zap.String("target", cfg.Target),
		zap.Float64("interval_sec", cfg.IntervalSec),
		zap.Int("traces_per_batch", cfg.TracesPerBatch),
		zap.Int("service_count", cfg.ServiceCount),
		zap.Bool("interservice", cfg.InterService),
	)
	loop.Run(ctx)
	logger.Info("Received stop signal, exiting")
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Failed to serve the metrics endpoint", zap.Error(err))
	}
}
