package core

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Message is the opaque payload carrier handled by the dispatch engine.
// Concrete variants add decoded views over the same raw bytes; the core
// never interprets raw_data itself.
type Message interface {
	// RawData returns the immutable bytes the message was constructed from.
	RawData() []byte

	// MessageID is a per-instance identifier generated at construction.
	// Two messages built from identical bytes are distinct messages.
	MessageID() uuid.UUID

	// Kind names the variant, e.g. "raw" or "json", for logging.
	Kind() string
}

// RawMessage carries bytes with no decoding.
type RawMessage struct {
	data []byte
	id   uuid.UUID
}

// NewRawMessage constructs a RawMessage from raw bytes.
func NewRawMessage(data []byte) *RawMessage {
	return &RawMessage{data: data, id: uuid.New()}
}

func (m *RawMessage) RawData() []byte     { return m.data }
func (m *RawMessage) MessageID() uuid.UUID { return m.id }
func (m *RawMessage) Kind() string        { return "raw" }

// JSONMessage memoises a structured decode of its bytes as JSON text.
//
// Two views are offered: Decode returns the full map[string]any unmarshal
// (decoded once, cached), and Get returns a gjson.Result for cheap single
// field lookups that don't need a full unmarshal — matchers that only
// inspect one field should prefer Get.
type JSONMessage struct {
	data []byte
	id   uuid.UUID

	mu      sync.Mutex
	decoded map[string]any
	decErr  error
	didDec  bool
}

// NewJSONMessage constructs a JSONMessage from raw UTF-8 JSON text bytes.
func NewJSONMessage(data []byte) *JSONMessage {
	return &JSONMessage{data: data, id: uuid.New()}
}

func (m *JSONMessage) RawData() []byte     { return m.data }
func (m *JSONMessage) MessageID() uuid.UUID { return m.id }
func (m *JSONMessage) Kind() string        { return "json" }

// Decode returns the message body decoded as a JSON object. The decode
// happens at most once per message; later calls return the cached result.
func (m *JSONMessage) Decode() (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.didDec {
		m.didDec = true
		var v map[string]any
		if err := json.Unmarshal(m.data, &v); err != nil {
			m.decErr = fmt.Errorf("json message %s: decode: %w", m.id, err)
		} else {
			m.decoded = v
		}
	}
	return m.decoded, m.decErr
}

// Get returns the value at path without a full unmarshal. Use this in
// matchers that only need to test one field — it is cheaper than Decode
// when the message may not even match.
func (m *JSONMessage) Get(path string) gjson.Result {
	return gjson.GetBytes(m.data, path)
}
