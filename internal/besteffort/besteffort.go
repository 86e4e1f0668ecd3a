// Package besteffort runs side effects whose failure must never fail the
// caller. The outcome is returned as a value so it can be logged or
// inspected in tests, but it is never turned back into an error.
package besteffort

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"bidsmart-backend/internal/logger"
)

type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Run calls fn once. Panics inside fn are recovered and reported as Err.
func Run(ctx context.Context, log *logger.Logger, name string, fn func(ctx context.Context) error) (res Result) {
	res.Name = name
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic in %s: %v", name, r)
			log.Error("best-effort task panicked", "task", name, "panic", r, "stack", string(debug.Stack()))
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			log.Warn("best-effort task failed", "task", name, "error", res.Err, "duration", res.Duration)
		} else {
			log.Debug("best-effort task finished", "task", name, "duration", res.Duration)
		}
	}()

	res.Err = fn(ctx)
	return res
}
