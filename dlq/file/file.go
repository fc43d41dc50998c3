// Package file provides an append-only core.DLQ, grounded directly on
// original_source/missive/dlq/file.py: every Put appends one line of
// "<raw_data>,<reason>\n" and is otherwise write-only. Delete, Len, Keys and
// Get operate on an in-memory index built from what's been written this
// process, since the file itself is never read back or rewritten.
package file

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/forgemsg/dispatch/core"
)

type entry struct {
	msg    core.Message
	reason string
}

// DLQ appends every entry to a backing file and tracks it in memory for the
// lifetime of the process.
type DLQ struct {
	mu   sync.Mutex
	file *os.File
	path string

	entries map[uuid.UUID]entry
}

// New opens (creating if necessary) the file at path in append mode.
func New(path string) (*DLQ, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("dlq/file: open %q: %w", path, err)
	}
	return &DLQ{file: f, path: path, entries: make(map[uuid.UUID]entry)}, nil
}

// Put appends "<raw_data>,<reason>\n" to the backing file and records the
// entry in memory.
func (d *DLQ) Put(id uuid.UUID, msg core.Message, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	line := make([]byte, 0, len(msg.RawData())+len(reason)+2)
	line = append(line, msg.RawData()...)
	line = append(line, ',')
	line = append(line, reason...)
	line = append(line, '\n')

	if _, err := d.file.Write(line); err != nil {
		return fmt.Errorf("dlq/file: write to %q: %w", d.path, err)
	}
	d.entries[id] = entry{msg: msg, reason: reason}
	return nil
}

// Delete removes the in-memory record for id. The backing file, being
// append-only, keeps its historical line.
func (d *DLQ) Delete(id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, id)
	return nil
}

func (d *DLQ) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *DLQ) Keys() []uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	keys := make([]uuid.UUID, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	return keys
}

func (d *DLQ) Get(id uuid.UUID) (core.Message, string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[id]
	return e.msg, e.reason, ok
}

// Close closes the backing file.
func (d *DLQ) Close() error {
	return d.file.Close()
}

var _ core.DLQ = (*DLQ)(nil)
