// Package sigrace races asynchronous operations against the process
// interrupt signal (Ctrl+C), turning the interrupt into an ordinary error
// value instead of a separate signal-handling code path.
//
// The core is [WithInterruptAsError]: it wraps an [Op] so that the wrapped
// operation completes either with its own result or, if the user interrupts
// first, with [ErrInterrupted]. Application code then treats an interrupt
// like any other failure in an error-propagation chain:
//
//	op := sigrace.WithInterruptAsError(task.Fetch(url, 2, 10*time.Second))
//	body, err := op(ctx)
//	if errors.Is(err, sigrace.ErrInterrupted) {
//		// user pressed Ctrl+C
//	}
//
// # Race semantics
//
// If the operation finishes strictly before an interrupt arrives, its result
// is returned unchanged. If the interrupt arrives strictly first, the wrapped
// operation's context is cancelled, the operation is abandoned, and
// [ErrInterrupted] is returned. When both are observed ready in the same
// step, the operation's own result wins: finishing work beats reporting an
// interruption, deterministically.
//
// # Non-forwarding boundary
//
// Interrupt awareness covers exactly the operation that was wrapped, not
// steps chained after it. Given
//
//	sigrace.Then(sigrace.WithInterruptAsError(opA), func(a A) sigrace.Op[B] { return opB })
//
// an interrupt raised while opB is pending does not abort the chain; opB runs
// to its own completion. Each segment that should be interruptible must be
// wrapped independently.
//
// # The interrupt source
//
// A single process-wide hook backs every raced operation. It is installed
// lazily on first use (or eagerly via [Install]) and never more than once.
// One physical Ctrl+C wakes every operation that is racing at that moment;
// operations started afterwards wait for the next interrupt.
package sigrace
