package service

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dash-tools/otel-loadgen/pkg/generator/model"
	otlpModel "github.com/dash-tools/otel-loadgen/pkg/otlp/model"
)

const (
	scopeName             = "dash-otel-loadgen"
	scopeVersion          = "1.0.0"
	deploymentEnvironment = "load-test"

	// traceStartStagger spreads the root spans of one batch out in time so
	// the traces do not all begin on the same nanosecond.
	traceStartStagger = 3 * time.Millisecond
)

// TraceBatchAssembler builds one batch of traces ready for delivery. The
// batch index is threaded in by the caller, which owns incrementing it.
type TraceBatchAssembler interface {
	AssembleBatch(batchIndex int64, batchStart time.Time) (otlpModel.TracePayload, model.BatchStats)
}

type TraceBatchAssemblerImpl struct {
	singleService TopologyBuilder
	interService  TopologyBuilder
	idGenerator   IdGenerator
	rng           *rand.Rand
	params        model.BatchParams
}

func NewTraceBatchAssemblerImpl(
	singleService TopologyBuilder,
	interService TopologyBuilder,
	idGenerator IdGenerator,
	rng *rand.Rand,
	params model.BatchParams,
) *TraceBatchAssemblerImpl {
	return &TraceBatchAssemblerImpl{
		singleService: singleService,
		interService:  interService,
		idGenerator:   idGenerator,
		rng:           rng,
		params:        params,
	}
}

func (tba *TraceBatchAssemblerImpl) AssembleBatch(
	batchIndex int64,
	batchStart time.Time,
) (otlpModel.TracePayload, model.BatchStats) {
	resourceSpans := make([]otlpModel.ResourceSpans, 0, tba.params.TracesPerBatch)
	stats := model.BatchStats{}

	for idx := 0; idx < tba.params.TracesPerBatch; idx++ {
		traceParams := model.TraceParams{
			TraceId:     tba.idGenerator.GenerateTraceId(),
			EdgeService: tba.edgeServiceName(batchIndex, idx),
			BatchIndex:  batchIndex,
			RootStart:   batchStart.Add(time.Duration(idx) * traceStartStagger),
			Error:       (batchIndex+int64(idx))%int64(tba.params.ErrorEvery) == 0,
		}

		builder := tba.singleService
		if tba.params.InterService && tba.rng.Float64() < tba.params.InterServiceRatio {
			builder = tba.interService
			stats.InterServiceTraces++
		}

		for serviceName, spans := range builder.BuildTrace(traceParams) {
			resourceSpans = append(resourceSpans, tba.newResourceSpans(serviceName, spans))
			stats.Spans += len(spans)
		}
	}

	stats.ResourceSpans = len(resourceSpans)
	return otlpModel.TracePayload{ResourceSpans: resourceSpans}, stats
}

func (tba *TraceBatchAssemblerImpl) newResourceSpans(
	serviceName string,
	spans []otlpModel.Span,
) otlpModel.ResourceSpans {
	return otlpModel.ResourceSpans{
		Resource: otlpModel.Resource{
			Attributes: []otlpModel.KeyValue{
				otlpModel.NewAttribute("service.name", serviceName),
				otlpModel.NewAttribute("service.namespace", tba.params.ServicePrefix),
				otlpModel.NewAttribute("deployment.environment", deploymentEnvironment),
			},
		},
		ScopeSpans: []otlpModel.ScopeSpans{
			{
				Scope: otlpModel.Scope{Name: scopeName, Version: scopeVersion},
				Spans: spans,
			},
		},
	}
}

func (tba *TraceBatchAssemblerImpl) edgeServiceName(batchIndex int64, traceIndex int) string {
	suffix := (batchIndex+int64(traceIndex))%int64(tba.params.ServiceCount) + 1
	return fmt.Sprintf("%s-%d", tba.params.ServicePrefix, suffix)
}
