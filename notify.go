package sigrace

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
)

// ///////////////////////////////////////////////
// OS Hook Seam
// ///////////////////////////////////////////////

// installHook registers ch with the operating system's interrupt facility.
// It is a package variable so tests can count installations and simulate
// platforms that refuse the registration.
var installHook = func(ch chan<- os.Signal) error {
	signal.Notify(ch, os.Interrupt)
	return nil
}

// ///////////////////////////////////////////////
// Interrupt Source
// ///////////////////////////////////////////////

// source bridges the OS interrupt delivery into generation channels that any
// number of waiters can select on. It is installed at most once per process
// and never torn down; the hook lives for the process lifetime.
type source struct {
	mu        sync.Mutex
	installed bool
	// gen is the current generation channel. It is closed when an interrupt
	// is delivered, waking every waiter holding it, and replaced with a
	// fresh channel so later waiters only observe later interrupts.
	gen chan struct{}
	// sig receives deliveries from the OS hook. Buffered so the runtime's
	// signal dispatcher never blocks between receives of the forwarding
	// goroutine.
	sig chan os.Signal
}

// std is the process-wide source shared by every raced operation.
var std = &source{}

// Install eagerly registers the process-wide interrupt hook. Most callers
// never need it: [WithInterruptAsError] and [NextInterrupt] install lazily on
// first use. Install exists for programs that want registration failures
// surfaced at startup rather than at the first race.
//
// A second explicit Install fails with [ErrHookInstalled]; the hook is never
// silently double-registered. A failed OS registration is reported as an
// error wrapping [ErrHookInstall].
func Install() error {
	return std.install(true)
}

// NextInterrupt returns a channel that is closed the first time the process
// receives an interrupt after this call, installing the hook if needed.
// Every caller holding the same returned channel observes the same physical
// interrupt; a channel obtained after a firing waits for the next one. If no
// further interrupt arrives, the channel stays open forever.
func NextInterrupt() (<-chan struct{}, error) {
	return std.next()
}

// install registers the OS hook and starts the forwarding goroutine.
// When the hook is already installed, explicit installation fails with
// [ErrHookInstalled] while lazy installation is a no-op.
func (s *source) install(explicit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed {
		if explicit {
			return ErrHookInstalled
		}
		return nil
	}
	sig := make(chan os.Signal, 1)
	if err := installHook(sig); err != nil {
		return fmt.Errorf("%w: %v", ErrHookInstall, err)
	}
	s.sig = sig
	s.gen = make(chan struct{})
	s.installed = true
	go s.forward()
	return nil
}

func (s *source) next() (<-chan struct{}, error) {
	if err := s.install(false); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen, nil
}

// forward runs on the normal scheduler, not in signal context: the runtime's
// own handler only pushes into s.sig. Each delivery rotates the generation,
// which is cheap enough that the loop keeps up with any realistic rate of
// Ctrl+C presses.
func (s *source) forward() {
	for range s.sig {
		s.fire()
	}
}

// fire wakes every current waiter by closing the generation channel, then
// re-arms with a fresh channel for waiters that arrive later.
func (s *source) fire() {
	s.mu.Lock()
	close(s.gen)
	s.gen = make(chan struct{})
	s.mu.Unlock()
}
