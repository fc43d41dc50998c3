package core

// BeforeProcessingFunc runs once when a ProcessingContext is opened.
type BeforeProcessingFunc func(ProcessingContext) error

// AfterProcessingFunc runs once when a ProcessingContext closes, whether or
// not the session exited normally.
type AfterProcessingFunc func(ProcessingContext) error

// BeforeHandlingFunc runs before a handler, once per message.
type BeforeHandlingFunc func(ProcessingContext, HandlingContext) error

// AfterHandlingFunc runs after a handler, once per message, even if the
// handler panicked or returned by raising a fault.
type AfterHandlingFunc func(ProcessingContext, HandlingContext) error

// hookSet holds the four ordered hook lists. Registration is append-only;
// invocation order is registration order for both before and after lists —
// deliberately symmetric, not reversed, so teardown ordering is the
// registering caller's responsibility (spec §4.5).
type hookSet struct {
	beforeProcessing []BeforeProcessingFunc
	afterProcessing  []AfterProcessingFunc
	beforeHandling   []BeforeHandlingFunc
	afterHandling    []AfterHandlingFunc
}

func (h *hookSet) runBeforeProcessing(pc ProcessingContext) error {
	for _, fn := range h.beforeProcessing {
		if err := fn(pc); err != nil {
			return err
		}
	}
	return nil
}

// runAfterProcessing runs every after-processing hook regardless of earlier
// failures, collecting the first error to report (spec §4.3: after-hooks
// run even when an uncaught exception is exiting the scope).
func (h *hookSet) runAfterProcessing(pc ProcessingContext) error {
	var first error
	for _, fn := range h.afterProcessing {
		if err := fn(pc); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (h *hookSet) runBeforeHandling(pc ProcessingContext, hc HandlingContext) error {
	for _, fn := range h.beforeHandling {
		if err := fn(pc, hc); err != nil {
			return err
		}
	}
	return nil
}

func (h *hookSet) runAfterHandling(pc ProcessingContext, hc HandlingContext) error {
	var first error
	for _, fn := range h.afterHandling {
		if err := fn(pc, hc); err != nil && first == nil {
			first = err
		}
	}
	return first
}
