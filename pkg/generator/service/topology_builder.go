package service

import (
	"github.com/dash-tools/otel-loadgen/pkg/generator/model"
)

// TopologyBuilder produces the complete span tree of one trace, grouped by
// the service that emitted each span. Implementations keep every child span
// inside its parent's interval as closely as their randomized offsets allow
// and never emit a span whose end does not exceed its start.
type TopologyBuilder interface {
	BuildTrace(params model.TraceParams) model.ServiceSpans
}
