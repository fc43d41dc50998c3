// Package dispatch provides the top-level API for the framework. It
// re-exports the core types so callers can write:
//
//	proc := dispatch.NewProcessor()
//	proc.HandleFor(always, func(msg dispatch.Message, ctx dispatch.HandlingContext) {
//	    ctx.Ack()
//	})
//	proc.SetDLQ(memory.New())
//	proc.Session(adapter, func(pc dispatch.ProcessingContext) error {
//	    return adapter.Run(ctx, shutdown, pc.Handle)
//	})
package dispatch

import "github.com/forgemsg/dispatch/core"

// Re-export core types at the package level for ergonomic usage.
type (
	Message             = core.Message
	RawMessage          = core.RawMessage
	JSONMessage         = core.JSONMessage
	Matcher             = core.Matcher
	Handler             = core.Handler
	Adapter             = core.Adapter
	DLQ                 = core.DLQ
	State               = core.State
	Processor           = core.Processor
	ProcessingContext   = core.ProcessingContext
	HandlingContext     = core.HandlingContext
	ShutdownCoordinator = core.ShutdownCoordinator
	TestAdapter         = core.TestAdapter
	TestClient          = core.TestClient
	Logger              = core.Logger
)

// NewProcessor creates a new, empty Processor.
func NewProcessor() *Processor {
	return core.NewProcessor()
}

// NewShutdownCoordinator creates a process-wide waitable shutdown flag.
func NewShutdownCoordinator() *ShutdownCoordinator {
	return core.NewShutdownCoordinator()
}

// NewRawMessage constructs a RawMessage from raw bytes.
func NewRawMessage(data []byte) *RawMessage { return core.NewRawMessage(data) }

// NewJSONMessage constructs a JSONMessage from raw JSON bytes.
func NewJSONMessage(data []byte) *JSONMessage { return core.NewJSONMessage(data) }

// All returns a Matcher that matches when every given matcher matches.
func All(matchers ...Matcher) Matcher { return core.All(matchers...) }

// Any returns a Matcher that matches when at least one given matcher matches.
func Any(matchers ...Matcher) Matcher { return core.Any(matchers...) }
