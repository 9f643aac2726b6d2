package sigrace

import "context"

// outcome carries a finished operation's result across the race boundary.
type outcome[T any] struct {
	value T
	err   error
}

// WithInterruptAsError wraps op so that running it races the operation
// against the process interrupt signal.
//
// If op completes first, success or failure, its result is returned exactly.
// If the interrupt arrives strictly first, the wrapped operation's context is
// cancelled, the operation is abandoned without being awaited further, and
// [ErrInterrupted] is returned. When both are ready in the same step, op's
// own result wins.
//
// The race is armed when the returned operation starts running, not when
// WithInterruptAsError is called, and it covers only op itself: operations
// chained after the wrapped one via [Then] are not interrupt-aware unless
// wrapped themselves.
//
// WithInterruptAsError may be applied to any number of operations; they all
// share one process-wide hook, and concurrently running raced operations are
// all woken by the same interrupt. If the hook cannot be installed, the
// returned operation fails immediately with an error wrapping
// [ErrHookInstall].
func WithInterruptAsError[T any](op Op[T]) Op[T] {
	return func(ctx context.Context) (T, error) {
		interrupt, err := NextInterrupt()
		if err != nil {
			var zero T
			return zero, err
		}

		opCtx, cancel := context.WithCancel(ctx)
		// Buffered so the operation's goroutine can always deliver its
		// result and exit, even after the race has been decided against it.
		done := make(chan outcome[T], 1)
		go func() {
			v, opErr := op(opCtx)
			done <- outcome[T]{value: v, err: opErr}
		}()

		out, interrupted := race(done, interrupt)
		// On interrupt this cancel is the abandonment signal: the operation
		// releases its resources through its own context handling.
		cancel()
		if interrupted {
			var zero T
			return zero, ErrInterrupted
		}
		return out.value, out.err
	}
}

// race waits for a finished operation or an interrupt firing, whichever
// comes first. Completion wins ties: done is checked before blocking and
// re-checked when the interrupt fires, so an operation observed finished in
// the same step as an interrupt still reports its own result.
func race[T any](done <-chan outcome[T], interrupt <-chan struct{}) (outcome[T], bool) {
	select {
	case out := <-done:
		return out, false
	default:
	}
	select {
	case out := <-done:
		return out, false
	case <-interrupt:
		select {
		case out := <-done:
			return out, false
		default:
			return outcome[T]{}, true
		}
	}
}
