package core_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgemsg/dispatch/core"
)

// fakeDLQ is a minimal in-memory core.DLQ, standing in for the dlq/memory
// package for tests that only need to observe routing decisions.
type fakeDLQ struct {
	mu      sync.Mutex
	entries map[uuid.UUID]entry
}

type entry struct {
	msg    core.Message
	reason string
}

func newFakeDLQ() *fakeDLQ { return &fakeDLQ{entries: map[uuid.UUID]entry{}} }

func (d *fakeDLQ) Put(id uuid.UUID, msg core.Message, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[id] = entry{msg: msg, reason: reason}
	return nil
}

func (d *fakeDLQ) Delete(id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, id)
	return nil
}

func (d *fakeDLQ) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *fakeDLQ) Keys() []uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	keys := make([]uuid.UUID, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	return keys
}

func (d *fakeDLQ) Get(id uuid.UUID) (core.Message, string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[id]
	return e.msg, e.reason, ok
}

// Scenario 1: a single matching handler acks the message.
func TestScenario_OneMatchingHandlerAcks(t *testing.T) {
	proc := core.NewProcessor()
	require.NoError(t, proc.HandleFor(always, func(_ core.Message, ctx core.HandlingContext) {
		require.NoError(t, ctx.Ack())
	}))

	tc, err := proc.TestClient()
	require.NoError(t, err)

	msg := core.NewRawMessage([]byte("hi"))
	require.NoError(t, tc.Send(ctxBG(), msg))
	require.NoError(t, tc.Close())

	assert.True(t, tc.Adapter.IsAcked(msg.MessageID()))
}

// Scenario 2: zero matching handlers and no DLQ propagates NoHandlerFault,
// and the message is never acked.
func TestScenario_ZeroHandlersNoDLQ(t *testing.T) {
	proc := core.NewProcessor()
	require.NoError(t, proc.HandleFor(never, func(core.Message, core.HandlingContext) {}))

	tc, err := proc.TestClient()
	require.NoError(t, err)

	msg := core.NewRawMessage([]byte("hi"))
	err = tc.Send(ctxBG(), msg)

	var fault *core.NoHandlerFault
	assert.True(t, errors.As(err, &fault))
	assert.False(t, tc.Adapter.IsAcked(msg.MessageID()))
	require.NoError(t, tc.Close())
}

// Scenario 3: zero matching handlers with a DLQ configured is recoverable:
// the message is DLQ'd under "no matching handlers" and acked.
func TestScenario_ZeroHandlersWithDLQ(t *testing.T) {
	proc := core.NewProcessor()
	require.NoError(t, proc.HandleFor(never, func(core.Message, core.HandlingContext) {}))

	dlq := newFakeDLQ()
	proc.SetDLQ(dlq)

	tc, err := proc.TestClient()
	require.NoError(t, err)

	msg := core.NewRawMessage([]byte("hi"))
	require.NoError(t, tc.Send(ctxBG(), msg))
	require.NoError(t, tc.Close())

	assert.True(t, tc.Adapter.IsAcked(msg.MessageID()))
	_, reason, ok := dlq.Get(msg.MessageID())
	require.True(t, ok)
	assert.Equal(t, "no matching handlers", reason)
}

// Scenario 4: registering two handlers under the same matcher identity
// fails at registration time with *RegistrationFault.
func TestScenario_DuplicateMatcherRegistrationFails(t *testing.T) {
	proc := core.NewProcessor()
	require.NoError(t, proc.HandleFor(always, func(core.Message, core.HandlingContext) {}))

	err := proc.HandleFor(always, func(core.Message, core.HandlingContext) {})
	var fault *core.RegistrationFault
	assert.True(t, errors.As(err, &fault))
}

// Scenario 5: a handler that panics, with a DLQ configured, is recoverable:
// the message lands in the DLQ carrying the error text, and is acked.
func TestScenario_HandlerRaisesWithDLQ(t *testing.T) {
	proc := core.NewProcessor()
	require.NoError(t, proc.HandleFor(always, func(core.Message, core.HandlingContext) {
		panic("boom")
	}))

	dlq := newFakeDLQ()
	proc.SetDLQ(dlq)

	tc, err := proc.TestClient()
	require.NoError(t, err)

	msg := core.NewRawMessage([]byte("hi"))
	require.NoError(t, tc.Send(ctxBG(), msg))
	require.NoError(t, tc.Close())

	assert.True(t, tc.Adapter.IsAcked(msg.MessageID()))
	_, reason, ok := dlq.Get(msg.MessageID())
	require.True(t, ok)
	assert.Contains(t, reason, "boom")
}

// Scenario 6: a before-processing hook that fails propagates a
// *ProcessingHookFault regardless of any DLQ, and after-processing hooks
// still ran.
func TestScenario_ProcessingHookRaises(t *testing.T) {
	proc := core.NewProcessor()
	proc.SetDLQ(newFakeDLQ())

	afterRan := false
	proc.BeforeProcessing(func(core.ProcessingContext) error {
		return errors.New("pool unavailable")
	})
	proc.AfterProcessing(func(core.ProcessingContext) error {
		afterRan = true
		return nil
	})

	_, _, err := proc.OpenSession(core.NewTestAdapter())

	var fault *core.ProcessingHookFault
	assert.True(t, errors.As(err, &fault))
	assert.True(t, afterRan)
}

// Scenario 7: a before-handling hook that fails, with a DLQ configured, is
// recoverable the same way a handler fault is: one DLQ entry, message acked.
func TestScenario_HandlingHookRaisesWithDLQ(t *testing.T) {
	proc := core.NewProcessor()
	dlq := newFakeDLQ()
	proc.SetDLQ(dlq)

	proc.BeforeHandling(func(core.ProcessingContext, core.HandlingContext) error {
		return errors.New("no connection available")
	})
	require.NoError(t, proc.HandleFor(always, func(core.Message, core.HandlingContext) {
		t.Fatal("handler must not run when a before-handling hook fails")
	}))

	tc, err := proc.TestClient()
	require.NoError(t, err)

	msg := core.NewRawMessage([]byte("hi"))
	require.NoError(t, tc.Send(ctxBG(), msg))
	require.NoError(t, tc.Close())

	assert.Equal(t, 1, dlq.Len())
	assert.True(t, tc.Adapter.IsAcked(msg.MessageID()))
}

// Scenario 8: JSONMessage round-trips through dispatch, and handlers can
// read fields via Get without decoding the whole body.
func TestScenario_JSONRoundTrip(t *testing.T) {
	proc := core.NewProcessor()

	var seenFlag string
	require.NoError(t, proc.HandleFor(
		func(m core.Message) bool { return m.(*core.JSONMessage).Get("flag").String() == "a" },
		func(m core.Message, ctx core.HandlingContext) {
			seenFlag = m.(*core.JSONMessage).Get("flag").String()
			require.NoError(t, ctx.Ack())
		},
	))

	tc, err := proc.TestClient()
	require.NoError(t, err)

	msg := core.NewJSONMessage([]byte(`{"flag":"a"}`))
	require.NoError(t, tc.Send(ctxBG(), msg))
	require.NoError(t, tc.Close())

	assert.Equal(t, "a", seenFlag)
	assert.True(t, tc.Adapter.IsAcked(msg.MessageID()))
}

// A second Ack on the same HandlingContext is rejected rather than silently
// forwarded again (spec §9 decision: double ack/nack is enforced).
func TestHandlingContext_DoubleAckIsRejected(t *testing.T) {
	proc := core.NewProcessor()
	var second error
	require.NoError(t, proc.HandleFor(always, func(_ core.Message, ctx core.HandlingContext) {
		require.NoError(t, ctx.Ack())
		second = ctx.Ack()
	}))

	tc, err := proc.TestClient()
	require.NoError(t, err)
	require.NoError(t, tc.Send(ctxBG(), core.NewRawMessage(nil)))
	require.NoError(t, tc.Close())

	var fault *core.TransportFault
	assert.True(t, errors.As(second, &fault))
}

// A handler that acks successfully and is then followed by a failing
// after-handling hook must not be acked a second time through the DLQ
// fault-routing path: routeMessageFault has to go through the
// HandlingContext's resolved guard, not straight to the adapter.
func TestScenario_AfterHandlingHookFaultAfterAckDoesNotDoubleAck(t *testing.T) {
	proc := core.NewProcessor()
	dlq := newFakeDLQ()
	proc.SetDLQ(dlq)

	proc.AfterHandling(func(core.ProcessingContext, core.HandlingContext) error {
		return errors.New("after-handling hook failed")
	})
	require.NoError(t, proc.HandleFor(always, func(_ core.Message, ctx core.HandlingContext) {
		require.NoError(t, ctx.Ack())
	}))

	tc, err := proc.TestClient()
	require.NoError(t, err)

	msg := core.NewRawMessage([]byte("hi"))
	require.NoError(t, tc.Send(ctxBG(), msg))
	require.NoError(t, tc.Close())

	acked := tc.Adapter.Acked()
	count := 0
	for _, m := range acked {
		if m.MessageID() == msg.MessageID() {
			count++
		}
	}
	assert.Equal(t, 1, count, "message must be acked exactly once")
	assert.Equal(t, 1, dlq.Len(), "the hook fault is still recorded in the dlq")
}
