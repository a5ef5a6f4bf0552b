package model

import (
	tracev1 "go.opentelemetry.io/proto/otlp/trace/v1"
)

// Span kind integers as they appear in OTLP/JSON, derived from the OTLP
// protobuf enum so the wire values cannot drift from the protocol.
const (
	KindInternal = int32(tracev1.Span_SPAN_KIND_INTERNAL)
	KindServer   = int32(tracev1.Span_SPAN_KIND_SERVER)
	KindClient   = int32(tracev1.Span_SPAN_KIND_CLIENT)
	KindProducer = int32(tracev1.Span_SPAN_KIND_PRODUCER)
	KindConsumer = int32(tracev1.Span_SPAN_KIND_CONSUMER)
)

// StatusCodeError is the status code literal carried by error spans.
var StatusCodeError = tracev1.Status_STATUS_CODE_ERROR.String()

// TracePayload is the envelope POSTed to the collector's /v1/traces endpoint.
type TracePayload struct {
	ResourceSpans []ResourceSpans `json:"resourceSpans"`
}

// ResourceSpans holds the spans one service emitted for one trace, together
// with the resource attributes identifying that service.
type ResourceSpans struct {
	Resource   Resource     `json:"resource"`
	ScopeSpans []ScopeSpans `json:"scopeSpans"`
}

type Resource struct {
	Attributes []KeyValue `json:"attributes"`
}

type ScopeSpans struct {
	Scope Scope  `json:"scope"`
	Spans []Span `json:"spans"`
}

type Scope struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Span struct {
	TraceID           string     `json:"traceId"`
	SpanID            string     `json:"spanId"`
	ParentSpanID      string     `json:"parentSpanId,omitempty"` // empty for root spans
	Name              string     `json:"name"`
	Kind              int32      `json:"kind"`
	StartTimeUnixNano int64      `json:"startTimeUnixNano,string"`
	EndTimeUnixNano   int64      `json:"endTimeUnixNano,string"`
	Attributes        []KeyValue `json:"attributes"`
	Status            *Status    `json:"status,omitempty"`
}

type Status struct {
	Code string `json:"code"`
}
