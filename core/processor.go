package core

import "fmt"

// Processor is the top-level object: it holds the handler registry and the
// hook lists, and creates a ProcessingContext per adapter run.
type Processor struct {
	registry *Registry
	hooks    *hookSet
	dlq      DLQ
	logger   sugaredLogger
}

// NewProcessor creates an empty Processor. Register handlers with HandleFor,
// optionally a DLQ with SetDLQ, before opening a session.
func NewProcessor() *Processor {
	return &Processor{
		registry: newRegistry(),
		hooks:    &hookSet{},
		logger:   nopLogger{},
	}
}

// HandleFor registers handler to run for every message matcher accepts.
// Registering a second handler under an equivalent matcher identity fails
// with *RegistrationFault (spec §4.2).
func (p *Processor) HandleFor(matcher Matcher, handler Handler) error {
	return p.registry.Register(matcher, handler)
}

// SetDLQ configures the dead-letter queue. A nil DLQ (the default) means
// unhandled/ambiguous/faulted messages are fatal instead of recoverable.
func (p *Processor) SetDLQ(dlq DLQ) {
	p.dlq = dlq
}

// SetLogger installs a structured logger. The default is a no-op logger, so
// a Processor used as a library produces no output unless configured.
func (p *Processor) SetLogger(l Logger) {
	if l == nil {
		p.logger = nopLogger{}
		return
	}
	p.logger = l
}

// BeforeProcessing registers a hook run once when a session opens. A
// returned error is always fatal (*ProcessingHookFault), never DLQ'd.
func (p *Processor) BeforeProcessing(fn BeforeProcessingFunc) {
	p.hooks.beforeProcessing = append(p.hooks.beforeProcessing, fn)
}

// AfterProcessing registers a hook run once when a session closes, even if
// the session is exiting with an error.
func (p *Processor) AfterProcessing(fn AfterProcessingFunc) {
	p.hooks.afterProcessing = append(p.hooks.afterProcessing, fn)
}

// BeforeHandling registers a hook run before every handler invocation.
// A returned error follows the same DLQ-or-fatal policy as a handler fault.
func (p *Processor) BeforeHandling(fn BeforeHandlingFunc) {
	p.hooks.beforeHandling = append(p.hooks.beforeHandling, fn)
}

// AfterHandling registers a hook run after every handler invocation, even
// if the handler panicked.
func (p *Processor) AfterHandling(fn AfterHandlingFunc) {
	p.hooks.afterHandling = append(p.hooks.afterHandling, fn)
}

// OpenSession runs before-processing hooks and returns a live
// ProcessingContext plus a close function. The caller MUST call close
// exactly once, however the session ends, so after-processing hooks run
// (spec §4.3). This is the low-level primitive; most adapters should use
// Session instead, which applies the scoped-acquisition pattern for them.
func (p *Processor) OpenSession(adapter Adapter) (ProcessingContext, func() error, error) {
	pc := newProcessingContext(p, adapter)

	if err := p.hooks.runBeforeProcessing(pc); err != nil {
		fault := &ProcessingHookFault{Cause: err}
		p.logger.Errorw("before-processing hook fault", "fault", "critical", "error", err)
		if afterErr := p.hooks.runAfterProcessing(pc); afterErr != nil {
			return nil, nil, fmt.Errorf("%w (after-processing hook also failed: %v)", fault, afterErr)
		}
		return nil, nil, fault
	}

	closed := false
	closer := func() error {
		if closed {
			return nil
		}
		closed = true
		if err := p.hooks.runAfterProcessing(pc); err != nil {
			p.logger.Errorw("after-processing hook fault", "fault", "critical", "error", err)
			return &ProcessingHookFault{Cause: err}
		}
		return nil
	}
	return pc, closer, nil
}

// Session opens a ProcessingContext against adapter, runs before-processing
// hooks, calls fn with the context, then runs after-processing hooks on the
// way out — whether fn returned normally, with an error, or panicked (spec
// §4.3). A before/after processing hook failure is always a fatal
// *ProcessingHookFault, never routed to a DLQ.
//
// Adapters call Session once per run, and call ProcessingContext.Handle for
// each inbound message while inside fn.
func (p *Processor) Session(adapter Adapter, fn func(ProcessingContext) error) (err error) {
	pc, closer, err := p.OpenSession(adapter)
	if err != nil {
		return err
	}

	defer func() {
		r := recover()
		if closeErr := closer(); closeErr != nil && err == nil && r == nil {
			err = closeErr
		}
		if r != nil {
			panic(r)
		}
	}()

	err = fn(pc)
	return err
}
