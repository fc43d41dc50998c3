package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgemsg/dispatch/core"
)

func TestRawMessage_EmptyBytesIsValid(t *testing.T) {
	msg := core.NewRawMessage([]byte(""))
	assert.Equal(t, []byte(""), msg.RawData())
	assert.Equal(t, "raw", msg.Kind())
}

func TestRawMessage_DistinctInstancesHaveDistinctIDs(t *testing.T) {
	a := core.NewRawMessage([]byte("same"))
	b := core.NewRawMessage([]byte("same"))
	assert.NotEqual(t, a.MessageID(), b.MessageID())
}

func TestJSONMessage_Decode(t *testing.T) {
	msg := core.NewJSONMessage([]byte(`{"flag":"a"}`))
	body, err := msg.Decode()
	require.NoError(t, err)
	assert.Equal(t, "a", body["flag"])

	// decode is memoised: calling twice returns consistent results.
	body2, err := msg.Decode()
	require.NoError(t, err)
	assert.Equal(t, body, body2)
}

func TestJSONMessage_Get(t *testing.T) {
	msg := core.NewJSONMessage([]byte(`{"flag":"a","nested":{"n":1}}`))
	assert.Equal(t, "a", msg.Get("flag").String())
	assert.Equal(t, int64(1), msg.Get("nested.n").Int())
	assert.False(t, msg.Get("missing").Exists())
}

func TestJSONMessage_DecodeInvalidJSON(t *testing.T) {
	msg := core.NewJSONMessage([]byte(`not json`))
	_, err := msg.Decode()
	assert.Error(t, err)
}
