// Unix/Darwin implementation of [Raise] using kill(2).
//
// This file is compiled on all non-Windows platforms (Linux, macOS, *BSD).
// Sending SIGINT to the own process is indistinguishable from a terminal
// Ctrl+C as far as the interrupt source is concerned.

//go:build !windows

package sigrace

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Raise delivers the interrupt signal to the current process, as if the user
// had pressed Ctrl+C. It is the programmatic trigger used by control
// endpoints and tests; racing semantics are identical to a real interrupt.
func Raise() error {
	if err := unix.Kill(unix.Getpid(), unix.SIGINT); err != nil {
		return fmt.Errorf("raise interrupt: %w", err)
	}
	return nil
}
