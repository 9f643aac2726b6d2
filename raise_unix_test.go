// raise_unix_test.go is the end-to-end check against the real signal
// facility: a genuine SIGINT delivered via [Raise] must wake a waiter
// registered through the real os/signal hook. Kept Unix-only because
// console control events cannot be delivered safely inside the Windows
// test harness.

//go:build !windows

package sigrace

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRaise_RealSignalDelivery(t *testing.T) {
	// A dedicated source with the real hook; registering a second Notify
	// channel alongside any existing ones is safe and keeps the default
	// SIGINT disposition disabled while the test raises.
	s := &source{}
	ch, err := s.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}

	if err := Raise(); err != nil {
		t.Fatalf("Raise: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("real SIGINT did not reach the interrupt source")
	}
}

func TestRaise_InterruptsRacedOperation(t *testing.T) {
	s := &source{}
	prev := std
	std = s
	t.Cleanup(func() { std = prev })

	started := make(chan struct{})
	blocked := Op[string](func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})

	results := make(chan error, 1)
	go func() {
		_, err := WithInterruptAsError(blocked)(context.Background())
		results <- err
	}()

	// The race arms against the real hook before the operation starts.
	<-started
	if err := Raise(); err != nil {
		t.Fatalf("Raise: %v", err)
	}

	select {
	case err := <-results:
		if !errors.Is(err, ErrInterrupted) {
			t.Fatalf("got %v, want ErrInterrupted", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("raced operation did not resolve after a real SIGINT")
	}
}
