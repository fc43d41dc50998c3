package core

import (
	"fmt"

	"github.com/google/uuid"
)

// RegistrationFault reports a duplicate matcher registered at configuration
// time. It is fatal at startup and never reaches message processing.
type RegistrationFault struct {
	Existing Handler
	New      Handler
}

func (e *RegistrationFault) Error() string {
	return fmt.Sprintf("dispatch: matcher already registered for handler %p, cannot register %p", e.Existing, e.New)
}

// NoHandlerFault reports zero matching handlers with no DLQ configured.
type NoHandlerFault struct {
	MessageID uuid.UUID
}

func (e *NoHandlerFault) Error() string {
	return fmt.Sprintf("dispatch: no matching handler for message %s and no dlq configured", e.MessageID)
}

// AmbiguousHandlerFault reports more than one matching handler with no DLQ
// configured.
type AmbiguousHandlerFault struct {
	MessageID uuid.UUID
	Count     int
}

func (e *AmbiguousHandlerFault) Error() string {
	return fmt.Sprintf("dispatch: %d matching handlers for message %s and no dlq configured", e.Count, e.MessageID)
}

// HandlerFault wraps a panic or error raised by a handler, a matcher, or a
// handling hook — all message-attributable failures.
type HandlerFault struct {
	MessageID uuid.UUID
	Cause     error
}

func (e *HandlerFault) Error() string {
	return fmt.Sprintf("dispatch: handler fault for message %s: %v", e.MessageID, e.Cause)
}

func (e *HandlerFault) Unwrap() error { return e.Cause }

// ProcessingHookFault wraps an error returned by a before/after processing
// hook. Always fatal — never routed to the DLQ, since these hooks concern
// session resources, not any single message. A panic in a processing hook
// is not recovered or wrapped; it propagates to the caller as a panic.
type ProcessingHookFault struct {
	Cause error
}

func (e *ProcessingHookFault) Error() string {
	return fmt.Sprintf("dispatch: processing hook fault: %v", e.Cause)
}

func (e *ProcessingHookFault) Unwrap() error { return e.Cause }

// TransportFault reports an operation the adapter does not support, such as
// nack on a transport with no negative-acknowledgement concept, or a second
// ack/nack on an already-resolved message.
type TransportFault struct {
	Op     string
	Reason string
}

func (e *TransportFault) Error() string {
	return fmt.Sprintf("dispatch: transport fault on %s: %s", e.Op, e.Reason)
}

// ErrNoSuchAttribute is returned by State.Get when the key has not been set.
var ErrNoSuchAttribute = fmt.Errorf("dispatch: no such attribute")
