package sigrace

import (
	"context"
	"time"
)

// ///////////////////////////////////////////////
// Operation Type
// ///////////////////////////////////////////////

// Op is an asynchronous operation producing a value of type T. The context
// is the operation's teardown discipline: an abandoned operation has its
// context cancelled and is expected to release its resources and return.
//
// An Op is a value; nothing runs until it is invoked. Invoking the same Op
// twice runs the operation twice.
type Op[T any] func(ctx context.Context) (T, error)

// ///////////////////////////////////////////////
// Constructors
// ///////////////////////////////////////////////

// Value returns an operation that immediately succeeds with v.
func Value[T any](v T) Op[T] {
	return func(context.Context) (T, error) {
		return v, nil
	}
}

// Fail returns an operation that immediately fails with err.
func Fail[T any](err error) Op[T] {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}

// Sleep returns an operation that succeeds after d has elapsed, or fails
// with the context's error if the context is cancelled first.
func Sleep(d time.Duration) Op[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return struct{}{}, nil
		case <-ctx.Done():
			return struct{}{}, ctx.Err()
		}
	}
}

// ///////////////////////////////////////////////
// Sequencing
// ///////////////////////////////////////////////

// Then sequences two operations: it runs op, and if op succeeds, feeds the
// result to f and runs the operation f returns. An error from op
// short-circuits; f is not called.
//
// Then does not extend interrupt awareness. Chaining after a
// [WithInterruptAsError]-wrapped operation leaves the second segment
// un-raced; wrap each segment that should be interruptible.
func Then[A, B any](op Op[A], f func(A) Op[B]) Op[B] {
	return func(ctx context.Context) (B, error) {
		a, err := op(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a)(ctx)
	}
}

// Map returns an operation that applies f to op's successful result.
func Map[A, B any](op Op[A], f func(A) B) Op[B] {
	return Then(op, func(a A) Op[B] {
		return Value(f(a))
	})
}
