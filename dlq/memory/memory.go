// Package memory provides a process-local core.DLQ backed by a mutex-guarded
// map. It never persists anything — useful for tests and for adapters that
// only need the DLQ routing policy, not durability.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/forgemsg/dispatch/core"
)

type entry struct {
	msg    core.Message
	reason string
}

// DLQ is an in-memory core.DLQ.
type DLQ struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]entry
}

// New constructs an empty in-memory DLQ.
func New() *DLQ {
	return &DLQ{entries: make(map[uuid.UUID]entry)}
}

func (d *DLQ) Put(id uuid.UUID, msg core.Message, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[id] = entry{msg: msg, reason: reason}
	return nil
}

func (d *DLQ) Delete(id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, id)
	return nil
}

func (d *DLQ) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

func (d *DLQ) Keys() []uuid.UUID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]uuid.UUID, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	return keys
}

func (d *DLQ) Get(id uuid.UUID) (core.Message, string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[id]
	return e.msg, e.reason, ok
}

var _ core.DLQ = (*DLQ)(nil)
