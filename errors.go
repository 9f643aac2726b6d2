package sigrace

import "errors"

// ///////////////////////////////////////////////
// Errors
// ///////////////////////////////////////////////

var (
	// ErrInterrupted is returned by a raced operation when the interrupt
	// arrives strictly before the wrapped operation completes. It carries no
	// payload; match it with [errors.Is]. The closest analogue is the
	// KeyboardInterrupt exception of interpreted languages.
	ErrInterrupted = errors.New("interrupted")

	// ErrHookInstalled is returned by [Install] when the process-wide
	// interrupt hook has already been installed, either by an earlier
	// explicit Install call or lazily by a raced operation. The hook is a
	// per-process resource; a second registration is refused rather than
	// silently stacked.
	ErrHookInstalled = errors.New("interrupt hook already installed")

	// ErrHookInstall wraps a failure to register the interrupt hook with the
	// operating system. It surfaces synchronously from whichever call first
	// triggers installation and is not retried: without an external change,
	// retrying a refused signal registration cannot succeed.
	ErrHookInstall = errors.New("interrupt hook installation failed")
)
