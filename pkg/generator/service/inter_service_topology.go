package service

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dash-tools/otel-loadgen/pkg/generator/model"
	otlpModel "github.com/dash-tools/otel-loadgen/pkg/otlp/model"
)

// workerBranchProbability is the chance that a checkout publishes an event
// consumed by the worker service.
const workerBranchProbability = 0.65

// InterServiceTopologyBuilder models one checkout request fanning out across
// up to five services: the edge receives the request, calls checkout, which
// queries its database and calls payments and inventory in turn; checkout may
// additionally publish an event picked up by a worker. Every child interval
// is derived from its parent's start plus a random offset and clamped to end
// inside the parent, so the tree is causally consistent by construction.
type InterServiceTopologyBuilder struct {
	factory       *SpanFactory
	idGenerator   IdGenerator
	servicePrefix string
	rng           *rand.Rand
}

func NewInterServiceTopologyBuilder(
	factory *SpanFactory,
	idGenerator IdGenerator,
	servicePrefix string,
	rng *rand.Rand,
) *InterServiceTopologyBuilder {
	return &InterServiceTopologyBuilder{
		factory:       factory,
		idGenerator:   idGenerator,
		servicePrefix: servicePrefix,
		rng:           rng,
	}
}

func (ist *InterServiceTopologyBuilder) BuildTrace(params model.TraceParams) model.ServiceSpans {
	checkoutService := ist.serviceName("checkout")
	paymentsService := ist.serviceName("payments")
	inventoryService := ist.serviceName("inventory")
	workerService := ist.serviceName("worker")

	rootStart := params.RootStart
	rootEnd := rootStart.Add(randomDurationMs(ist.rng, 120, 280))
	rootSpanId := ist.idGenerator.GenerateSpanId()
	rootSpan := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId: params.TraceId,
		SpanId:  rootSpanId,
		Name:    "GET /checkout",
		Kind:    otlpModel.KindServer,
		Start:   rootStart,
		End:     rootEnd,
		Error:   params.Error,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("http.method", "GET"),
			otlpModel.NewAttribute("http.route", "/checkout"),
		},
	})

	// The edge's call into checkout keeps at least 15ms of the root interval
	// free after it returns.
	checkoutCallStart := rootStart.Add(randomDurationMs(ist.rng, 3, 10))
	checkoutCallEnd := rootEnd.Add(-randomDurationMs(ist.rng, 15, 25))
	checkoutCallId := ist.idGenerator.GenerateSpanId()
	checkoutCall := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   checkoutCallId,
		ParentId: rootSpanId,
		Name:     "checkout.place_order",
		Kind:     otlpModel.KindClient,
		Start:    checkoutCallStart,
		End:      checkoutCallEnd,
		Error:    params.Error,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("rpc.system", "grpc"),
			otlpModel.NewAttribute("peer.service", checkoutService),
		},
	})

	checkoutStart := checkoutCallStart.Add(randomDurationMs(ist.rng, 1, 4))
	checkoutEnd := checkoutCallEnd.Add(-randomDurationMs(ist.rng, 2, 6))
	checkoutSpanId := ist.idGenerator.GenerateSpanId()
	checkoutSpan := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   checkoutSpanId,
		ParentId: checkoutCallId,
		Name:     "checkout.place_order",
		Kind:     otlpModel.KindServer,
		Start:    checkoutStart,
		End:      checkoutEnd,
		Error:    params.Error,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("rpc.system", "grpc"),
		},
	})

	dbStart, dbEnd := ist.childInterval(checkoutStart, checkoutEnd, 2, 6, 3, 10, 2)
	dbSpan := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   ist.idGenerator.GenerateSpanId(),
		ParentId: checkoutSpanId,
		Name:     "db.query",
		Kind:     otlpModel.KindInternal,
		Start:    dbStart,
		End:      dbEnd,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("db.system", "postgresql"),
			otlpModel.NewAttribute("db.operation", "SELECT"),
		},
	})

	// The payments call leaves enough room after its clamp limit for the
	// inventory call to start later and still fit.
	paymentsCallStart, paymentsCallEnd := ist.childInterval(checkoutStart, checkoutEnd, 8, 14, 20, 45, 30)
	paymentsCallId := ist.idGenerator.GenerateSpanId()
	paymentsCall := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   paymentsCallId,
		ParentId: checkoutSpanId,
		Name:     "payments.charge",
		Kind:     otlpModel.KindClient,
		Start:    paymentsCallStart,
		End:      paymentsCallEnd,
		Error:    params.Error,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("rpc.system", "grpc"),
			otlpModel.NewAttribute("peer.service", paymentsService),
		},
	})

	// The inventory call starts strictly after the payments call returns so
	// the two client spans never overlap.
	inventoryCallStart := paymentsCallEnd.Add(randomDurationMs(ist.rng, 1, 3))
	inventoryCallEnd := inventoryCallStart.Add(randomDurationMs(ist.rng, 14, 25))
	inventoryCallLimit := checkoutEnd.Add(-4 * time.Millisecond)
	if inventoryCallEnd.After(inventoryCallLimit) {
		inventoryCallEnd = inventoryCallLimit
	}
	inventoryCallId := ist.idGenerator.GenerateSpanId()
	inventoryCall := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   inventoryCallId,
		ParentId: checkoutSpanId,
		Name:     "inventory.reserve",
		Kind:     otlpModel.KindClient,
		Start:    inventoryCallStart,
		End:      inventoryCallEnd,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("rpc.system", "grpc"),
			otlpModel.NewAttribute("peer.service", inventoryService),
		},
	})

	paymentsStart := paymentsCallStart.Add(randomDurationMs(ist.rng, 1, 3))
	paymentsEnd := paymentsCallEnd.Add(-randomDurationMs(ist.rng, 2, 5))
	paymentsSpanId := ist.idGenerator.GenerateSpanId()
	paymentsSpan := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   paymentsSpanId,
		ParentId: paymentsCallId,
		Name:     "payments.charge",
		Kind:     otlpModel.KindServer,
		Start:    paymentsStart,
		End:      paymentsEnd,
		Error:    params.Error,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("rpc.system", "grpc"),
		},
	})

	writeStart, writeEnd := ist.childInterval(paymentsStart, paymentsEnd, 2, 5, 3, 8, 1)
	writeSpan := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   ist.idGenerator.GenerateSpanId(),
		ParentId: paymentsSpanId,
		Name:     "db.write",
		Kind:     otlpModel.KindInternal,
		Start:    writeStart,
		End:      writeEnd,
		Error:    params.Error,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("db.system", "postgresql"),
			otlpModel.NewAttribute("db.operation", "INSERT"),
		},
	})

	inventoryStart := inventoryCallStart.Add(randomDurationMs(ist.rng, 1, 3))
	inventoryEnd := inventoryCallEnd.Add(-randomDurationMs(ist.rng, 2, 4))
	inventorySpanId := ist.idGenerator.GenerateSpanId()
	inventorySpan := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   inventorySpanId,
		ParentId: inventoryCallId,
		Name:     "inventory.reserve",
		Kind:     otlpModel.KindServer,
		Start:    inventoryStart,
		End:      inventoryEnd,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("rpc.system", "grpc"),
		},
	})

	lookupStart, lookupEnd := ist.childInterval(inventoryStart, inventoryEnd, 2, 4, 2, 6, 1)
	lookupSpan := ist.factory.Build(params.BatchIndex, SpanParams{
		TraceId:  params.TraceId,
		SpanId:   ist.idGenerator.GenerateSpanId(),
		ParentId: inventorySpanId,
		Name:     "cache.lookup",
		Kind:     otlpModel.KindInternal,
		Start:    lookupStart,
		End:      lookupEnd,
		Attributes: []otlpModel.KeyValue{
			otlpModel.NewAttribute("cache.system", "redis"),
			otlpModel.NewAttribute("cache.hit", ist.rng.Intn(2) == 0),
		},
	})

	serviceSpans := model.ServiceSpans{
		params.EdgeService: {rootSpan, checkoutCall},
		checkoutService:    {checkoutSpan, dbSpan, paymentsCall, inventoryCall},
		paymentsService:    {paymentsSpan, writeSpan},
		inventoryService:   {inventorySpan, lookupSpan},
	}

	if ist.rng.Float64() < workerBranchProbability {
		publishStart, publishEnd := ist.childInterval(checkoutStart, checkoutEnd, 6, 12, 15, 30, 2)
		publishId := ist.idGenerator.GenerateSpanId()
		publishSpan := ist.factory.Build(params.BatchIndex, SpanParams{
			TraceId:  params.TraceId,
			SpanId:   publishId,
			ParentId: checkoutSpanId,
			Name:     "orders.publish",
			Kind:     otlpModel.KindProducer,
			Start:    publishStart,
			End:      publishEnd,
			Attributes: []otlpModel.KeyValue{
				otlpModel.NewAttribute("messaging.system", "kafka"),
				otlpModel.NewAttribute("messaging.destination", "orders"),
			},
		})
		serviceSpans[checkoutService] = append(serviceSpans[checkoutService], publishSpan)

		consumeStart := publishStart.Add(randomDurationMs(ist.rng, 2, 5))
		consumeEnd := publishEnd.Add(-randomDurationMs(ist.rng, 1, 3))
		consumeId := ist.idGenerator.GenerateSpanId()
		consumeSpan := ist.factory.Build(params.BatchIndex, SpanParams{
			TraceId:  params.TraceId,
			SpanId:   consumeId,
			ParentId: publishId,
			Name:     "orders.process",
			Kind:     otlpModel.KindConsumer,
			Start:    consumeStart,
			End:      consumeEnd,
			Attributes: []otlpModel.KeyValue{
				otlpModel.NewAttribute("messaging.system", "kafka"),
				otlpModel.NewAttribute("messaging.destination", "orders"),
			},
		})

		updateStart, updateEnd := ist.childInterval(consumeStart, consumeEnd, 1, 3, 2, 6, 1)
		updateSpan := ist.factory.Build(params.BatchIndex, SpanParams{
			TraceId:  params.TraceId,
			SpanId:   ist.idGenerator.GenerateSpanId(),
			ParentId: consumeId,
			Name:     "db.update",
			Kind:     otlpModel.KindInternal,
			Start:    updateStart,
			End:      updateEnd,
			Attributes: []otlpModel.KeyValue{
				otlpModel.NewAttribute("db.system", "postgresql"),
				otlpModel.NewAttribute("db.operation", "UPDATE"),
			},
		})
		serviceSpans[workerService] = []otlpModel.Span{consumeSpan, updateSpan}
	}

	return serviceSpans
}

// childInterval places a child inside the parent interval: the start is the
// parent start plus a random offset, the end is the start plus a random
// duration, clamped so at least endMarginMs of the parent remains after it.
func (ist *InterServiceTopologyBuilder) childInterval(
	parentStart time.Time,
	parentEnd time.Time,
	offsetMinMs int,
	offsetMaxMs int,
	durationMinMs int,
	durationMaxMs int,
	endMarginMs int,
) (time.Time, time.Time) {
	start := parentStart.Add(randomDurationMs(ist.rng, offsetMinMs, offsetMaxMs))
	end := start.Add(randomDurationMs(ist.rng, durationMinMs, durationMaxMs))
	limit := parentEnd.Add(-time.Duration(endMarginMs) * time.Millisecond)
	if end.After(limit) {
		end = limit
	}
	return start, end
}

func (ist *InterServiceTopologyBuilder) serviceName(suffix string) string {
	return fmt.Sprintf("%s-%s", ist.servicePrefix, suffix)
}
