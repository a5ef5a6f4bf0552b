package model

// BatchParams is the generation configuration shared by every cycle.
type BatchParams struct {
	TracesPerBatch    int
	ServicePrefix     string
	ServiceCount      int
	ErrorEvery        int
	InterService      bool
	InterServiceRatio float64
}

// BatchStats aggregates what one assembled batch contained.
type BatchStats struct {
	Spans              int
	InterServiceTraces int
	ResourceSpans      int
}
