package service

import (
	"math/rand"

	"github.com/dash-tools/otel-loadgen/pkg/generator/model"
	otlpModel "github.com/dash-tools/otel-loadgen/pkg/otlp/model"
)

// SingleServiceTopologyBuilder emits a three span tree confined to one
// service: an HTTP server root with a db.query and a cache.lookup child.
type SingleServiceTopologyBuilder struct {
	factory     *SpanFactory
	idGenerator IdGenerator
	rng         *rand.Rand
}

func NewSingleServiceTopologyBuilder(
	factory *SpanFactory,
	idGenerator IdGenerator,
	rng *rand.Rand,
) *SingleServiceTopologyBuilder {
	return &SingleServiceTopologyBuilder{
		factory:     factory,
		idGenerator: idGenerator,
		rng:         rng,
	}
}

func (sst *SingleServiceTopologyBuilder) BuildTrace(params model.TraceParams) model.ServiceSpans {
	rootSpanId := sst.idGenerator.GenerateSpanId()
	rootStart := params.RootStart
	rootEnd := rootStart.Add(randomDurationMs(sst.rng, 30, 120))

	rootSpan := sst.factory.Build(params.BatchIndex, SpanParams{
		TraceId: params.TraceId,
		SpanId:  rootSpanId,
		Name:    "http.request",
		Kind:    otlpModel.KindServer,
		Start:   rootStart,
		End:     rootEnd,
		Error:   params.Error,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("http.method", "GET"),
			otlpModel.NewAttribute("http.route", "/api/loadgen"),
		},
	})

	// Child offsets never exceed the smallest possible root duration, so both
	// children land inside the root's interval.
	dbStart := rootStart.Add(randomDurationMs(sst.rng, 5, 16))
	dbSpan := sst.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   sst.idGenerator.GenerateSpanId(),
		ParentId: rootSpanId,
		Name:     "db.query",
		Kind:     otlpModel.KindInternal,
		Start:    dbStart,
		End:      dbStart.Add(randomDurationMs(sst.rng, 2, 14)),
		Error:    params.Error,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("db.system", "postgresql"),
			otlpModel.NewAttribute("db.operation", "SELECT"),
		},
	})

	cacheStart := rootStart.Add(randomDurationMs(sst.rng, 5, 16))
	cacheSpan := sst.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   sst.idGenerator.GenerateSpanId(),
		ParentId: rootSpanId,
		Name:     "cache.lookup",
		Kind:     otlpModel.KindInternal,
		Start:    cacheStart,
		End:      cacheStart.Add(randomDurationMs(sst.rng, 2, 14)),
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("cache.system", "redis"),
			otlpModel.NewAttribute("cache.hit", sst.rng.Intn(2) == 0),
		},
	})

	return model.ServiceSpans{
		params.EdgeService: {rootSpan, dbSpan, cacheSpan},
	}
}
