// Package poller runs fixed-interval polling loops and one-shot delayed
// calls, both bound to a context.
package poller

import (
	"context"
	"time"
)

const (
	// QuestionInterval and QuestionMaxAttempts bound the wait for
	// bid_questions rows (about five minutes).
	QuestionInterval    = 5 * time.Second
	QuestionMaxAttempts = 60

	// EnrichmentDelay is when bids are re-fetched once to pick up late data.
	EnrichmentDelay = 15 * time.Second
)

// CheckFunc reports whether the awaited condition holds.
type CheckFunc func(ctx context.Context) (done bool, err error)

type Result struct {
	Attempts  int
	Done      bool
	Exhausted bool
	LastErr   error
}

// Poll calls fn immediately and then every interval until fn reports done
// or maxAttempts calls have been made. Hitting the cap is not an error. An
// error from fn counts as a not-done attempt. The only error returned is
// ctx.Err().
func Poll(ctx context.Context, interval time.Duration, maxAttempts int, fn CheckFunc) (Result, error) {
	var res Result
	if maxAttempts <= 0 {
		res.Exhausted = true
		return res, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Attempts++
		done, err := fn(ctx)
		res.LastErr = err
		if err == nil && done {
			res.Done = true
			return res, nil
		}
		if res.Attempts >= maxAttempts {
			res.Exhausted = true
			return res, nil
		}

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-ticker.C:
		}
	}
}

// After runs fn once after delay. The returned channel receives fn's error,
// or ctx.Err() if the context ends first, and is then closed.
func After(ctx context.Context, delay time.Duration, fn func(ctx context.Context) error) <-chan error {
	out := make(chan error, 1)
	go func() {
		defer close(out)
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			out <- ctx.Err()
		case <-timer.C:
			out <- fn(ctx)
		}
	}()
	return out
}
