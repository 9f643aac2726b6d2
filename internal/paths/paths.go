// Package paths centralizes file and directory names used across the
// sigrace runner. All data directory file names are defined here as the
// single source of truth.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	ConfigFile = "config.toml"
	LogFile    = "runner.log"
	ReportFile = "report.json"
	SocketFile = "control.sock"
)

const (
	BinaryName = "sigrace"
	DataDirRel = ".sigrace" // relative to $HOME
)

// ControlPipe is the Windows named pipe used by the control endpoint. Unix
// platforms use the socket file in the data directory instead.
const ControlPipe = `\\.\pipe\sigrace-control`

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// Report returns the full path to the run report file.
func (d DataDir) Report() string { return filepath.Join(d.Root, ReportFile) }

// Socket returns the full path to the Unix control socket.
func (d DataDir) Socket() string { return filepath.Join(d.Root, SocketFile) }
