package core

import "github.com/google/uuid"

// DLQ is a keyed container of (message, reason) pairs for messages the
// dispatch engine could not route to exactly one handler, or whose handler
// faulted. Implementations may persist or discard; the core only requires
// Put to complete synchronously before the offending message is acked.
type DLQ interface {
	// Put inserts or overwrites the entry for id.
	Put(id uuid.UUID, msg Message, reason string) error

	// Delete removes the entry for id, if present.
	Delete(id uuid.UUID) error

	// Len reports the number of entries.
	Len() int

	// Keys returns every stored message id. Order is implementation-defined.
	Keys() []uuid.UUID

	// Get returns the entry for id, and whether it was present.
	Get(id uuid.UUID) (msg Message, reason string, ok bool)
}
