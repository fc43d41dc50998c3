package core

import (
	"context"
	"fmt"
	"runtime"
)

// dispatch implements the core algorithm from spec §4.1:
//
//  1. Collect every handler whose matcher returns true for msg.
//  2. k == 0: unhandled — DLQ it (and ack) if a DLQ is configured, else
//     raise NoHandlerFault.
//  3. k  > 1: ambiguous — DLQ it (and ack) if a DLQ is configured, else
//     raise AmbiguousHandlerFault.
//  4. k == 1: open a HandlingContext, run before-handling hooks, invoke the
//     handler, run after-handling hooks (guaranteed even on panic/fault).
//     A fault from the handler or either handling hook is DLQ'd (and acked)
//     if a DLQ is configured, else propagated with the message left un-acked.
func (p *Processor) dispatch(ctx context.Context, pc *processingContext, msg Message) (err error) {
	matches := p.matchWithRecovery(msg)
	if matches.fault != nil {
		return p.routeMessageFault(ctx, pc, nil, msg, matches.fault)
	}

	switch len(matches.handlers) {
	case 0:
		return p.routeUnresolved(ctx, pc, msg, "no matching handlers", &NoHandlerFault{MessageID: msg.MessageID()})
	case 1:
		return p.dispatchOne(ctx, pc, msg, matches.handlers[0])
	default:
		return p.routeUnresolved(ctx, pc, msg, "multiple matching handlers",
			&AmbiguousHandlerFault{MessageID: msg.MessageID(), Count: len(matches.handlers)})
	}
}

type matchResult struct {
	handlers []Handler
	fault    error
}

// matchWithRecovery evaluates every registered matcher, converting a panic
// inside a matcher into a HandlerFault — spec §4.1.1: "exceptions raised
// inside a matcher are treated as handler-side failures".
func (p *Processor) matchWithRecovery(msg Message) (result matchResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorw("matcher panicked", "message_id", msg.MessageID(), "panic", r, "stack", captureStack())
			result = matchResult{fault: &HandlerFault{MessageID: msg.MessageID(), Cause: fmt.Errorf("panic: %v", r)}}
		}
	}()
	result = matchResult{handlers: p.registry.matching(msg)}
	return
}

// captureStack returns a formatted stack trace for panic diagnostics,
// grounded on the teacher's former Recovery middleware
// (core/middleware/recovery.go in smilad-Event-MUX), moved here since the
// dispatch engine — not a pluggable hook — is what actually recovers
// handler and matcher panics (spec §4.1: "catches exceptions").
func captureStack() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// routeUnresolved handles the k==0 and k>1 cases, which share the same
// DLQ-or-fatal policy. No handler ever ran for these, so there is no
// HandlingContext to resolve through — ack goes straight through pc.
func (p *Processor) routeUnresolved(ctx context.Context, pc *processingContext, msg Message, reason string, fatal error) error {
	if p.dlq == nil {
		p.logger.Errorw("dispatch fault, no dlq configured", "fault", "critical", "message_id", msg.MessageID(), "reason", reason)
		return fatal
	}
	if err := p.dlq.Put(msg.MessageID(), msg, reason); err != nil {
		return fmt.Errorf("dispatch: dlq put for message %s: %w", msg.MessageID(), err)
	}
	p.logger.Warnw("routed to dlq", "message_id", msg.MessageID(), "reason", reason)
	if err := pc.Ack(ctx, msg); err != nil {
		return fmt.Errorf("dispatch: ack after dlq put for message %s: %w", msg.MessageID(), err)
	}
	p.logger.Infow("acked", "message_id", msg.MessageID())
	return nil
}

func (p *Processor) dispatchOne(ctx context.Context, pc *processingContext, msg Message, handler Handler) error {
	hc := newHandlingContext(ctx, pc, msg)

	fault := p.runScopedHandling(pc, hc, handler)
	if fault == nil {
		return nil
	}
	return p.routeMessageFault(ctx, pc, hc, msg, fault)
}

// runScopedHandling runs before-handling hooks, the handler, then
// after-handling hooks, guaranteeing the after-handling hooks run even if
// an earlier step panics or returns an error (spec §4.4).
func (p *Processor) runScopedHandling(pc *processingContext, hc *handlingContext, handler Handler) (fault error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorw("handler panicked", "message_id", hc.msg.MessageID(), "panic", r, "stack", captureStack())
			fault = &HandlerFault{MessageID: hc.msg.MessageID(), Cause: fmt.Errorf("panic: %v", r)}
		}
		afterErr := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Errorw("after-handling hook panicked", "message_id", hc.msg.MessageID(), "panic", r, "stack", captureStack())
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return p.hooks.runAfterHandling(pc, hc)
		}()
		if afterErr != nil && fault == nil {
			fault = &HandlerFault{MessageID: hc.msg.MessageID(), Cause: afterErr}
		}
	}()

	if err := p.hooks.runBeforeHandling(pc, hc); err != nil {
		return &HandlerFault{MessageID: hc.msg.MessageID(), Cause: err}
	}
	handler(hc.msg, hc)
	return nil
}

// routeMessageFault applies the message-scoped fault policy from spec §4.1.6:
// with a DLQ, capture and continue; without one, propagate (message not
// acked).
//
// hc is the HandlingContext opened for this message, or nil when the fault
// came from matchWithRecovery before any HandlingContext existed (no handler
// ever ran). When hc is non-nil the ack on DLQ-capture goes through
// hc.ackIfUnresolved, not pc.Ack directly — a handler may have already
// called Ack or Nack before an after-handling hook raised this fault, and
// routing through hc lets the existing resolved guard turn that into a
// no-op instead of forwarding a second ack to the adapter.
func (p *Processor) routeMessageFault(ctx context.Context, pc *processingContext, hc *handlingContext, msg Message, fault error) error {
	if p.dlq == nil {
		p.logger.Errorw("handler fault, no dlq configured, message not acked", "fault", "critical", "message_id", msg.MessageID(), "error", fault)
		return fault
	}
	if err := p.dlq.Put(msg.MessageID(), msg, fault.Error()); err != nil {
		return fmt.Errorf("dispatch: dlq put for message %s: %w", msg.MessageID(), err)
	}
	p.logger.Warnw("handler fault routed to dlq", "message_id", msg.MessageID(), "error", fault)
	var ackErr error
	if hc != nil {
		ackErr = hc.ackIfUnresolved()
	} else {
		ackErr = pc.Ack(ctx, msg)
	}
	if ackErr != nil {
		return fmt.Errorf("dispatch: ack after dlq put for message %s: %w", msg.MessageID(), ackErr)
	}
	p.logger.Infow("acked", "message_id", msg.MessageID())
	return nil
}
