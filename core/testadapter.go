package core

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// TestAdapter is an in-process Adapter used by tests. It records every
// acked and nacked message so assertions can inspect them afterwards.
type TestAdapter struct {
	mu     sync.Mutex
	acked  []Message
	nacked []Message
}

// NewTestAdapter constructs an empty TestAdapter.
func NewTestAdapter() *TestAdapter {
	return &TestAdapter{}
}

func (a *TestAdapter) Ack(_ context.Context, msg Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, msg)
	return nil
}

func (a *TestAdapter) Nack(_ context.Context, msg Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, msg)
	return nil
}

// Acked returns every message acked so far, in ack order.
func (a *TestAdapter) Acked() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Message, len(a.acked))
	copy(out, a.acked)
	return out
}

// Nacked returns every message nacked so far, in nack order.
func (a *TestAdapter) Nacked() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Message, len(a.nacked))
	copy(out, a.nacked)
	return out
}

// IsAcked reports whether a message with the given id was acked.
func (a *TestAdapter) IsAcked(id uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range a.acked {
		if m.MessageID() == id {
			return true
		}
	}
	return false
}

// IsNacked reports whether a message with the given id was nacked.
func (a *TestAdapter) IsNacked(id uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range a.nacked {
		if m.MessageID() == id {
			return true
		}
	}
	return false
}

// TestClient drives a Processor directly, the way a real adapter would,
// without any transport. It opens one processing session for its lifetime;
// Close runs after-processing hooks and must be called once the test is
// done sending messages.
type TestClient struct {
	Adapter *TestAdapter

	pc     ProcessingContext
	closer func() error
}

// TestClient opens a session against a fresh TestAdapter and returns a
// client for sending messages into it.
func (p *Processor) TestClient() (*TestClient, error) {
	adapter := NewTestAdapter()
	pc, closer, err := p.OpenSession(adapter)
	if err != nil {
		return nil, err
	}
	return &TestClient{Adapter: adapter, pc: pc, closer: closer}, nil
}

// Send runs the dispatch algorithm for msg, as if it had been delivered by
// a real adapter.
func (tc *TestClient) Send(ctx context.Context, msg Message) error {
	return tc.pc.Handle(ctx, msg)
}

// Close runs after-processing hooks. Safe to call more than once.
func (tc *TestClient) Close() error {
	return tc.closer()
}
