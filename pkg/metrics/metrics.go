package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesDelivered counts the batches accepted by the collector.
	BatchesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loadgen_batches_delivered_total",
		Help: "Total batches accepted by the collector.",
	})

	// DeliveryFailures counts batches the collector rejected or that failed in transit.
	DeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loadgen_delivery_failures_total",
		Help: "Total batches rejected by the collector or failed in transit.",
	})

	// SpansGenerated counts every span emitted across all batches.
	SpansGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loadgen_spans_generated_total",
		Help: "Total spans generated across all batches.",
	})

	// InterServiceTraces counts the traces built with the inter-service topology.
	InterServiceTraces = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loadgen_interservice_traces_total",
		Help: "Total traces built with the inter-service topology.",
	})
)
