package service

import (
	"context"
	"time"

	generatorService "github.com/dash-tools/otel-loadgen/pkg/generator/service"
	"github.com/dash-tools/otel-loadgen/pkg/metrics"
	"go.uber.org/zap"
)

// DeliveryLoop assembles one batch per interval and posts it to the
// collector until the context is cancelled.
type DeliveryLoop struct {
	assembler      generatorService.TraceBatchAssembler
	sender         TraceSender
	interval       time.Duration
	tracesPerBatch int
	logger         *zap.Logger
}

func NewDeliveryLoop(
	assembler generatorService.TraceBatchAssembler,
	sender TraceSender,
	interval time.Duration,
	tracesPerBatch int,
	logger *zap.Logger,
) *DeliveryLoop {
	return &DeliveryLoop{
		assembler:      assembler,
		sender:         sender,
		interval:       interval,
		tracesPerBatch: tracesPerBatch,
		logger:         logger,
	}
}

// Run sends the first batch immediately and then one batch per tick. The
// batch index only ever increases, so the error cadence carries across
// batch boundaries.
func (dl *DeliveryLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(dl.interval)
	defer ticker.Stop()

	batchIndex := int64(0)
	dl.runCycle(ctx, batchIndex)
	batchIndex++

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dl.runCycle(ctx, batchIndex)
			batchIndex++
		}
	}
}

func (dl *DeliveryLoop) runCycle(ctx context.Context, batchIndex int64) {
	payload, stats := dl.assembler.AssembleBatch(batchIndex, time.Now())
	status, err := dl.sender.Send(ctx, payload)

	metrics.SpansGenerated.Add(float64(stats.Spans))
	metrics.InterServiceTraces.Add(float64(stats.InterServiceTraces))

	if err != nil {
		metrics.DeliveryFailures.Inc()
		dl.logger.Error(
			"Failed to deliver batch",
			zap.Int64("batch", batchIndex),
			zap.Int("status", status),
			zap.Int("traces", dl.tracesPerBatch),
			zap.Error(err),
		)
		return
	}

	metrics.BatchesDelivered.Inc()
	dl.logger.Info(
		"Delivered batch",
		zap.Int64("batch", batchIndex),
		zap.Int("status", status),
		zap.Int("traces", dl.tracesPerBatch),
		zap.Int("spans", stats.Spans),
		zap.Int("interservice_traces", stats.InterServiceTraces),
	)
}
