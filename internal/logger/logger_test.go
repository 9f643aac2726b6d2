// Package logger tests verify the line format, level filtering, attribute
// prefixes, and the rotating-file constructor.
package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo))

	log.Info("step finished", "name", "fetch", "ok", true)

	line := strings.TrimRight(buf.String(), "\n")
	if !strings.Contains(line, " INFO step finished") {
		t.Errorf("level/message missing: %q", line)
	}
	if !strings.Contains(line, "name=fetch") || !strings.Contains(line, "ok=true") {
		t.Errorf("attributes missing: %q", line)
	}
	// Timestamp is UTC and ends with Z.
	if !strings.HasSuffix(strings.Fields(line)[0], "Z") {
		t.Errorf("expected UTC timestamp, got %q", line)
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelWarn))

	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("record below level was emitted: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("record at level was not emitted: %q", out)
	}
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo))

	log.With("step", "watch").WithGroup("fs").Info("event", "path", "a.txt")

	line := buf.String()
	if !strings.Contains(line, "step=watch") {
		t.Errorf("pre-applied attr missing: %q", line)
	}
	if !strings.Contains(line, "fs.path=a.txt") {
		t.Errorf("group prefix missing: %q", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			if got := ParseLevel(c.in); got != c.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestNew_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runner.log")

	log, closer, err := New(path, slog.LevelInfo, 1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hello from test")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing record: %q", data)
	}
}

func TestNew_NoConsoleHandleSucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.log")

	log, closer, err := New(path, slog.LevelInfo, 1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	// With console output disabled every record goes only to the file;
	// Handle must report success, not a write error from a dead tee.
	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "file only", 0)
	if err := log.Handler().Handle(context.Background(), rec); err != nil {
		t.Fatalf("Handle with console disabled: %v", err)
	}
}

func TestNew_ConsoleTee(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runner.log")
	var console bytes.Buffer

	log, closer, err := New(path, slog.LevelInfo, 1, &console)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	log.Info("teed record")
	if !strings.Contains(console.String(), "teed record") {
		t.Errorf("console writer missing record: %q", console.String())
	}
}
