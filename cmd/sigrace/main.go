// Package main implements the sigrace runner, a small utility that executes
// configured steps (HTTP fetch, file watch, sleep), racing each one against
// Ctrl+C so an interrupt surfaces as an ordinary error in the run report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"tools.zach/dev/sigrace"
	"tools.zach/dev/sigrace/internal/atomicfile"
	"tools.zach/dev/sigrace/internal/config"
	"tools.zach/dev/sigrace/internal/logger"
	"tools.zach/dev/sigrace/internal/paths"
)

// ///////////////////////////////////////////////
// Exit Codes
// ///////////////////////////////////////////////

const (
	exitOK          = 0
	exitFailed      = 1
	exitInterrupted = 130 // 128 + SIGINT, the conventional shell code
)

// ///////////////////////////////////////////////
// Default Data Directory
// ///////////////////////////////////////////////

// defaultDataDir returns the platform default directory for runner data,
// typically ~/.sigrace. Falls back to ./.sigrace if the home directory
// cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}

// consoleWriter returns the stderr writer for foreground runs, or nil when
// console output is disabled. The return type is the interface so a disabled
// console is a true nil, never a typed-nil *os.File that [logger.New] would
// tee into.
func consoleWriter(enabled bool) io.Writer {
	if enabled {
		return os.Stderr
	}
	return nil
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	dataDir := flag.String("data-dir", defaultDataDir(), "Data directory for config, report, and logs")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(resolveVersion())
		return
	}

	os.Exit(run(paths.DataDir{Root: *dataDir}))
}

// run is main's testable body; it returns the process exit code.
func run(dd paths.DataDir) int {
	if err := os.MkdirAll(dd.Root, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: create data dir: %v\n", err)
		return exitFailed
	}

	if _, err := os.Stat(dd.Config()); os.IsNotExist(err) {
		if writeErr := atomicfile.Write(dd.Config(), []byte(config.DefaultTOML), 0o644); writeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write default config: %v\n", writeErr)
		}
	}

	cfg, err := config.Load(dd.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: load config: %v\n", err)
		return exitFailed
	}

	log, logCloser, err := logger.New(dd.Log(), logger.ParseLevel(cfg.Log.Level), cfg.Log.MaxSizeMB, consoleWriter(cfg.Log.Console))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: init logger: %v\n", err)
		return exitFailed
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("sigrace starting", "version", resolveVersion(), "data_dir", dd.Root)

	// Install the interrupt hook eagerly so a refused registration aborts
	// the run up front instead of failing the first raced step.
	if err := sigrace.Install(); err != nil && !errors.Is(err, sigrace.ErrHookInstalled) {
		slog.Error("cannot install interrupt hook", "error", err)
		return exitFailed
	}

	if cfg.Control.Enabled {
		ctl, ctlErr := startControl(dd)
		if ctlErr != nil {
			slog.Warn("control endpoint unavailable", "error", ctlErr)
		} else {
			defer ctl.Close()
			slog.Info("control endpoint listening", "addr", ctl.Addr())
		}
	}

	steps, err := buildSteps(cfg)
	if err != nil {
		slog.Error("invalid step configuration", "error", err)
		return exitFailed
	}

	results, code := runSteps(context.Background(), steps)

	if cfg.Run.WriteReport {
		if err := writeReport(dd.Report(), results); err != nil {
			slog.Warn("failed to write run report", "error", err)
		}
	}

	slog.Info("run finished", "exit_code", code)
	return code
}
