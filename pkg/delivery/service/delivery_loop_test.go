package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dash-tools/otel-loadgen/pkg/generator/model"
	"github.com/dash-tools/otel-loadgen/pkg/metrics"
	otlpModel "github.com/dash-tools/otel-loadgen/pkg/otlp/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var testLogger, _ = zap.NewDevelopment()

func TestDeliveryLoop(t *testing.T) {
	t.Run("Sends the first batch immediately and then one per tick", func(t *testing.T) {
		assembler := &stubBatchAssembler{stats: model.BatchStats{Spans: 3, ResourceSpans: 1}}
		sender := newStubTraceSender(http.StatusOK, nil)
		loop := NewDeliveryLoop(assembler, sender, 5*time.Millisecond, 1, testLogger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			loop.Run(ctx)
			close(done)
		}()

		for i := 0; i < 3; i++ {
			<-sender.sent
		}
		cancel()
		<-done

		indices := assembler.recordedIndices()
		assert.GreaterOrEqual(t, len(indices), 3)
		for idx, batchIndex := range indices {
			assert.Equal(t, int64(idx), batchIndex)
		}
	})

	t.Run("Sends the first batch without waiting for a tick", func(t *testing.T) {
		assembler := &stubBatchAssembler{}
		sender := newStubTraceSender(http.StatusOK, nil)
		loop := NewDeliveryLoop(assembler, sender, time.Hour, 1, testLogger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			loop.Run(ctx)
			close(done)
		}()

		<-sender.sent
		cancel()
		<-done

		assert.Equal(t, []int64{0}, assembler.recordedIndices())
	})

	t.Run("Counts delivery failures and keeps running", func(t *testing.T) {
		assembler := &stubBatchAssembler{stats: model.BatchStats{Spans: 3}}
		sender := newStubTraceSender(0, errors.New("connection refused"))
		loop := NewDeliveryLoop(assembler, sender, 5*time.Millisecond, 1, testLogger)

		failuresBefore := testutil.ToFloat64(metrics.DeliveryFailures)
		deliveredBefore := testutil.ToFloat64(metrics.BatchesDelivered)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			loop.Run(ctx)
			close(done)
		}()

		<-sender.sent
		<-sender.sent
		cancel()
		<-done

		cycles := len(assembler.recordedIndices())
		assert.GreaterOrEqual(t, cycles, 2)
		assert.Equal(t, float64(cycles), testutil.ToFloat64(metrics.DeliveryFailures)-failuresBefore)
		assert.Equal(t, float64(0), testutil.ToFloat64(metrics.BatchesDelivered)-deliveredBefore)
	})

	t.Run("Adds the batch statistics to the generation counters", func(t *testing.T) {
		assembler := &stubBatchAssembler{stats: model.BatchStats{Spans: 27, InterServiceTraces: 4, ResourceSpans: 9}}
		sender := newStubTraceSender(http.StatusOK, nil)
		loop := NewDeliveryLoop(assembler, sender, time.Hour, 8, testLogger)

		spansBefore := testutil.ToFloat64(metrics.SpansGenerated)
		interServiceBefore := testutil.ToFloat64(metrics.InterServiceTraces)
		deliveredBefore := testutil.ToFloat64(metrics.BatchesDelivered)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			loop.Run(ctx)
			close(done)
		}()

		<-sender.sent
		cancel()
		<-done

		assert.Equal(t, float64(27), testutil.ToFloat64(metrics.SpansGenerated)-spansBefore)
		assert.Equal(t, float64(4), testutil.ToFloat64(metrics.InterServiceTraces)-interServiceBefore)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.BatchesDelivered)-deliveredBefore)
	})
}

type stubBatchAssembler struct {
	mu      sync.Mutex
	stats   model.BatchStats
	indices []int64
}

func (sba *stubBatchAssembler) AssembleBatch(
	batchIndex int64,
	batchStart time.Time,
) (otlpModel.TracePayload, model.BatchStats) {
	sba.mu.Lock()
	defer sba.mu.Unlock()
	sba.indices = append(sba.indices, batchIndex)
	return otlpModel.TracePayload{}, sba.stats
}

func (sba *stubBatchAssembler) recordedIndices() []int64 {
	sba.mu.Lock()
	defer sba.mu.Unlock()
	return append([]int64{}, sba.indices...)
}

type stubTraceSender struct {
	status int
	err    error
	sent   chan struct{}
}

func newStubTraceSender(status int, err error) *stubTraceSender {
	return &stubTraceSender{status: status, err: err, sent: make(chan struct{}, 64)}
}

func (sts *stubTraceSender) Send(ctx context.Context, payload otlpModel.TracePayload) (int, error) {
	sts.sent <- struct{}{}
	return sts.status, sts.err
}
