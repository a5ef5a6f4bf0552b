package service

import (
	"math/rand"
	"time"

	"github.com/dash-tools/otel-loadgen/pkg/generator/model"
	otlpModel "github.com/dash-tools/otel-loadgen/pkg/otlp/model"
)

const testServicePrefix = "loadgen-service"

var testBatchStart = time.Unix(0, 1700000000000000000)

func newTestRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func newSingleServiceBuilder(seed int64) *SingleServiceTopologyBuilder {
	return NewSingleServiceTopologyBuilder(
		NewSpanFactory(time.Millisecond),
		NewIdGeneratorImpl(),
		newTestRng(seed),
	)
}

func newInterServiceBuilder(seed int64) *InterServiceTopologyBuilder {
	return NewInterServiceTopologyBuilder(
		NewSpanFactory(time.Millisecond),
		NewIdGeneratorImpl(),
		testServicePrefix,
		newTestRng(seed),
	)
}

func allSpans(serviceSpans model.ServiceSpans) []otlpModel.Span {
	var spans []otlpModel.Span
	for _, serviceSpanList := range serviceSpans {
		spans = append(spans, serviceSpanList...)
	}
	return spans
}

func indexSpansById(serviceSpans model.ServiceSpans) map[string]otlpModel.Span {
	indexed := make(map[string]otlpModel.Span)
	for _, span := range allSpans(serviceSpans) {
		indexed[span.SpanID] = span
	}
	return indexed
}

func findSpanByName(spans []otlpModel.Span, name string) (otlpModel.Span, bool) {
	for _, span := range spans {
		if span.Name == name {
			return span, true
		}
	}
	return otlpModel.Span{}, false
}

func findAttribute(span otlpModel.Span, key string) (otlpModel.AnyValue, bool) {
	for _, attribute := range span.Attributes {
		if attribute.Key == key {
			return attribute.Value, true
		}
	}
	return otlpModel.AnyValue{}, false
}

func hasErrorStatus(span otlpModel.Span) bool {
	return span.Status != nil && span.Status.Code == otlpModel.StatusCodeError
}
