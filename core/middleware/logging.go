// Package middleware provides optional before/after-handling hooks that
// cross-cut every message, adapted from the teacher's middleware chain
// (core/middleware/{logging,recovery,metrics}.go in the retrieved
// smilad-Event-MUX repo) onto this framework's hook model — a handler chain
// doesn't fit a "matcher picks exactly one handler" dispatcher, but the
// cross-cutting behaviors it existed for still do, as hooks.
package middleware

import (
	"time"

	"go.uber.org/zap"

	"github.com/forgemsg/dispatch/core"
)

const loggingStartKey = "middleware.logging.start"

// Logging returns a before/after-handling hook pair that logs message
// processing duration via the given logger.
func Logging(logger *zap.SugaredLogger) (core.BeforeHandlingFunc, core.AfterHandlingFunc) {
	before := func(_ core.ProcessingContext, hc core.HandlingContext) error {
		hc.State().Set(loggingStartKey, time.Now())
		return nil
	}
	after := func(_ core.ProcessingContext, hc core.HandlingContext) error {
		elapsed := time.Duration(0)
		if v, err := hc.State().Get(loggingStartKey); err == nil {
			if start, ok := v.(time.Time); ok {
				elapsed = time.Since(start)
			}
		}
		logger.Infow("message handled", "message_id", hc.Message().MessageID(), "elapsed", elapsed)
		return nil
	}
	return before, after
}
