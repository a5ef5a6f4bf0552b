package service

import (
	"time"

	otlpModel "github.com/dash-tools/otel-loadgen/pkg/otlp/model"
)

const (
	markerAttributeKey = "loadgen.marker"
	batchAttributeKey  = "loadgen.batch"
	errorAttributeKey  = "error"
)

const defaultMinimumSpanDuration = time.Millisecond

// SpanParams describes one span for the factory to assemble.
type SpanParams struct {
	TraceId    string
	SpanId     string
	ParentId   string
	Name       string
	Kind       int32
	Start      time.Time
	End        time.Time
	Error      bool
	Attributes []otlpModel.KeyValue
}

// SpanFactory assembles wire-level spans. It guarantees that every span it
// produces ends strictly after it starts: an end that does not exceed the
// start is clamped forward by the configured minimum duration rather than
// rejected.
type SpanFactory struct {
	minimumDuration time.Duration
}

func NewSpanFactory(minimumDuration time.Duration) *SpanFactory {
	if minimumDuration <= 0 {
		minimumDuration = defaultMinimumSpanDuration
	}
	return &SpanFactory{
		minimumDuration: minimumDuration,
	}
}

func (sf *SpanFactory) Build(batchIndex int64, params SpanParams) otlpModel.Span {
	end := params.End
	if !end.After(params.Start) {
		end = params.Start.Add(sf.minimumDuration)
	}

	kind := params.Kind
	if kind == 0 {
		kind = otlpModel.KindInternal
	}

	attributes := make([]otlpModel.KeyValue, 0, len(params.Attributes)+3)
	attributes = append(
		attributes,
		otlpModel.NewAttribute(markerAttributeKey, true),
		otlpModel.NewAttribute(batchAttributeKey, batchIndex),
	)
	attributes = append(attributes, params.Attributes...)

	span := otlpModel.Span{
		TraceID:           params.TraceId,
		SpanID:            params.SpanId,
		ParentSpanID:      params.ParentId,
		Name:              params.Name,
		Kind:              kind,
		StartTimeUnixNano: params.Start.UnixNano(),
		EndTimeUnixNano:   end.UnixNano(),
		Attributes:        attributes,
	}

	if params.Error {
		span.Status = &otlpModel.Status{Code: otlpModel.StatusCodeError}
		span.Attributes = append(span.Attributes, otlpModel.NewAttribute(errorAttributeKey, true))
	}

	return span
}
