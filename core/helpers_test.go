package core_test

import (
	"context"

	"github.com/forgemsg/dispatch/core"
)

// always and never mirror original_source/tests/matchers.py: the simplest
// possible matchers, used throughout the scenario tests from spec §8.
func always(core.Message) bool { return true }
func never(core.Message) bool  { return false }

func ctxBG() context.Context { return context.Background() }
