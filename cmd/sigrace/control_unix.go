// Unix/Darwin control endpoint listener using a Unix domain socket in the
// data directory.
//
// This file is compiled on all non-Windows platforms (Linux, macOS, *BSD).

//go:build !windows

package main

import (
	"fmt"
	"net"
	"os"

	"tools.zach/dev/sigrace/internal/paths"
)

// ///////////////////////////////////////////////
// Control Listener
// ///////////////////////////////////////////////

// listenControl listens on the control socket in the data directory. A
// stale socket file from a previous run is removed first; a live listener
// from a concurrently running instance makes the removal fail and the
// subsequent listen error is reported.
func listenControl(dd paths.DataDir) (net.Listener, error) {
	socket := dd.Socket()
	if _, err := os.Stat(socket); err == nil {
		os.Remove(socket)
	}
	ln, err := net.Listen("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("listen on control socket %s: %w", socket, err)
	}
	return ln, nil
}
