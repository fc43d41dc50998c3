package middleware

import (
	"time"

	"github.com/forgemsg/dispatch/core"
)

// MetricsCollector is the interface that metrics backends must implement.
// This keeps the hook decoupled from any specific metrics library.
type MetricsCollector interface {
	// MessageProcessed records that a message finished processing. label
	// identifies the Processor or deployment for metric tagging.
	MessageProcessed(label string, duration time.Duration)
}

const metricsStartKey = "middleware.metrics.start"

// Metrics returns a before/after-handling hook pair that reports processing
// duration to collector, tagged with label.
func Metrics(label string, collector MetricsCollector) (core.BeforeHandlingFunc, core.AfterHandlingFunc) {
	before := func(_ core.ProcessingContext, hc core.HandlingContext) error {
		hc.State().Set(metricsStartKey, time.Now())
		return nil
	}
	after := func(_ core.ProcessingContext, hc core.HandlingContext) error {
		if v, err := hc.State().Get(metricsStartKey); err == nil {
			if start, ok := v.(time.Time); ok {
				collector.MessageProcessed(label, time.Since(start))
			}
		}
		return nil
	}
	return before, after
}
