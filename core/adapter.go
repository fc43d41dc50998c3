package core

import "context"

// Adapter is the transport-facing boundary the core consumes. A transport
// plugin (stdin, HTTP, AMQP, pub/sub, or a test double) implements this to
// translate core-level Ack/Nack into whatever its broker expects.
//
// Ack signals positive acknowledgement to the transport. Nack signals
// negative acknowledgement and may be unsupported by a transport (then it
// returns a *TransportFault) — a message that is never acked nor nacked
// because a handler faulted with no DLQ configured is the adapter's signal
// that the broker should redeliver it.
type Adapter interface {
	Ack(ctx context.Context, msg Message) error
	Nack(ctx context.Context, msg Message) error
}
