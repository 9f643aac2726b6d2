// Windows control endpoint listener using a named pipe via the go-winio
// library.
//
// This file is compiled only on Windows. Unix domain sockets exist on
// modern Windows but named pipes remain the conventional local IPC surface,
// and go-winio provides a net.Listener over them directly.

//go:build windows

package main

import (
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"

	"tools.zach/dev/sigrace/internal/paths"
)

// ///////////////////////////////////////////////
// Control Listener
// ///////////////////////////////////////////////

// listenControl listens on the sigrace control pipe. The pipe name is
// global per session; a second concurrently running instance fails here,
// which is the desired behavior.
func listenControl(paths.DataDir) (net.Listener, error) {
	ln, err := winio.ListenPipe(paths.ControlPipe, nil)
	if err != nil {
		return nil, fmt.Errorf("listen on control pipe %s: %w", paths.ControlPipe, err)
	}
	return ln, nil
}
