package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgemsg/dispatch/core"
)

// State has no exported constructor; these tests exercise it indirectly
// through a HandlingContext, mirroring
// original_source/tests/test_state.py's getting/setting/deleting trio.

func TestState_GetSet(t *testing.T) {
	proc := core.NewProcessor()
	require := assert.New(t)

	var got any
	var getErr error
	require.NoError(proc.HandleFor(always, func(_ core.Message, ctx core.HandlingContext) {
		ctx.State().Set("foo", 1)
		got, getErr = ctx.State().Get("foo")
		_ = ctx.Ack()
	}))

	tc, err := proc.TestClient()
	require.NoError(err)
	require.NoError(tc.Send(ctxBG(), core.NewRawMessage(nil)))
	require.NoError(tc.Close())

	require.NoError(getErr)
	require.Equal(1, got)
}

func TestState_MissingKeyIsFault(t *testing.T) {
	proc := core.NewProcessor()
	a := assert.New(t)

	var getErr error
	a.NoError(proc.HandleFor(always, func(_ core.Message, ctx core.HandlingContext) {
		_, getErr = ctx.State().Get("nope")
		_ = ctx.Ack()
	}))

	tc, err := proc.TestClient()
	a.NoError(err)
	a.NoError(tc.Send(ctxBG(), core.NewRawMessage(nil)))
	a.NoError(tc.Close())

	a.True(errors.Is(getErr, core.ErrNoSuchAttribute))
}

func TestState_Delete(t *testing.T) {
	proc := core.NewProcessor()
	a := assert.New(t)

	var getErr error
	a.NoError(proc.HandleFor(always, func(_ core.Message, ctx core.HandlingContext) {
		ctx.State().Set("foo", 1)
		ctx.State().Delete("foo")
		_, getErr = ctx.State().Get("foo")
		_ = ctx.Ack()
	}))

	tc, err := proc.TestClient()
	a.NoError(err)
	a.NoError(tc.Send(ctxBG(), core.NewRawMessage(nil)))
	a.NoError(tc.Close())

	a.True(errors.Is(getErr, core.ErrNoSuchAttribute))
}
