// Windows implementation of [Raise] using console control events.
//
// Windows has no kill(2). CTRL_BREAK_EVENT is the only console event that
// can be targeted at a process group, and the Go runtime maps it to
// [os.Interrupt], so it reaches the interrupt source exactly like Ctrl+C.

//go:build windows

package sigrace

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Raise delivers a console interrupt to the current process group, as if the
// user had pressed Ctrl+Break. It is the programmatic trigger used by
// control endpoints and tests; racing semantics are identical to a real
// interrupt.
func Raise() error {
	if err := windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, 0); err != nil {
		return fmt.Errorf("raise interrupt: %w", err)
	}
	return nil
}
