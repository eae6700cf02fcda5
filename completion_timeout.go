package flagtree

import (
	"context"
	"fmt"
	"time"
)

// DefaultCompletionTimeout bounds a guarded callback when no timeout is given.
const DefaultCompletionTimeout = 2 * time.Second

type completionOutcome struct {
	result *CompletionResult
	err    error
}

// WithTimeout guards fn with a deadline. fn runs on its own goroutine and
// sees the deadline through ctx.Context(). If it does not finish in time the
// guard returns a result with no values and a single ActiveHelp warning, not
// an error, and whatever fn produces later is discarded.
func WithTimeout(timeout time.Duration, fn CompletionFunc) CompletionFunc {
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	return func(ctx *Context, prefix string) (*CompletionResult, error) {
		std, cancel := context.WithTimeout(ctx.Context(), timeout)
		defer cancel()

		// Buffered so an abandoned callback can still deliver and exit.
		done := make(chan completionOutcome, 1)
		go func() {
			var out completionOutcome
			defer func() {
				if p := recover(); p != nil {
					out = completionOutcome{err: fmt.Errorf("completion callback panicked: %v", p)}
				}
				done <- out
			}()
			r, err := fn(ctx.withStd(std), prefix)
			out = completionOutcome{result: r, err: err}
		}()

		select {
		case out := <-done:
			return out.result, out.err
		case <-std.Done():
			ctx.Logger().Debug("completion timed out", "path", ctx.CommandPath(), "timeout", timeout.String())
			return timedOutResult(timeout), nil
		}
	}
}

func timedOutResult(timeout time.Duration) *CompletionResult {
	r := NewCompletionResult()
	r.AddHelp(fmt.Sprintf("completion timed out after %s; results may be incomplete, try a more specific prefix", timeout))
	r.partial = true
	return r
}
