package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgemsg/dispatch/core"
	"github.com/forgemsg/dispatch/dlq/memory"
)

func TestDLQ_PutGetDelete(t *testing.T) {
	d := memory.New()
	msg := core.NewRawMessage([]byte("boom"))

	require.NoError(t, d.Put(msg.MessageID(), msg, "handler fault"))
	assert.Equal(t, 1, d.Len())

	got, reason, ok := d.Get(msg.MessageID())
	require.True(t, ok)
	assert.Equal(t, "handler fault", reason)
	assert.Equal(t, msg, got)

	require.NoError(t, d.Delete(msg.MessageID()))
	assert.Equal(t, 0, d.Len())

	_, _, ok = d.Get(msg.MessageID())
	assert.False(t, ok)
}

func TestDLQ_PutOverwritesExistingEntry(t *testing.T) {
	d := memory.New()
	msg := core.NewRawMessage([]byte("x"))

	require.NoError(t, d.Put(msg.MessageID(), msg, "first"))
	require.NoError(t, d.Put(msg.MessageID(), msg, "second"))

	_, reason, ok := d.Get(msg.MessageID())
	require.True(t, ok)
	assert.Equal(t, "second", reason)
	assert.Equal(t, 1, d.Len())
}

func TestDLQ_Keys(t *testing.T) {
	d := memory.New()
	a := core.NewRawMessage([]byte("a"))
	b := core.NewRawMessage([]byte("b"))
	require.NoError(t, d.Put(a.MessageID(), a, "r1"))
	require.NoError(t, d.Put(b.MessageID(), b, "r2"))

	keys := d.Keys()
	assert.Len(t, keys, 2)
}
