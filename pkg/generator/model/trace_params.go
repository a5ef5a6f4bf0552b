package model

import (
	"time"

	otlpModel "github.com/dash-tools/otel-loadgen/pkg/otlp/model"
)

// ServiceSpans groups the spans of one trace by the service that emitted them.
type ServiceSpans map[string][]otlpModel.Span

// TraceParams carries the per-trace decisions made by the batch assembler
// into the topology builders.
type TraceParams struct {
	TraceId     string
	EdgeService string
	BatchIndex  int64
	RootStart   time.Time
	Error       bool
}
