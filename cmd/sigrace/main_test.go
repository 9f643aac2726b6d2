// main_test.go covers step construction, run execution and exit codes, the
// run report, and the control endpoint protocol. The control tests use a
// loopback TCP listener so they run identically on every platform.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tools.zach/dev/sigrace"
	"tools.zach/dev/sigrace/internal/config"
)

// ///////////////////////////////////////////////
// Steps
// ///////////////////////////////////////////////

func TestBuildSteps_UnknownStep(t *testing.T) {
	cfg := config.Default()
	cfg.Run.Steps = []string{"sleep", "teleport"}

	if _, err := buildSteps(cfg); err == nil || !strings.Contains(err.Error(), "teleport") {
		t.Fatalf("buildSteps = %v, want unknown-step error naming the step", err)
	}
}

func TestBuildSteps_FetchRequiresURL(t *testing.T) {
	cfg := config.Default()
	cfg.Run.Steps = []string{"fetch"}
	cfg.Fetch.URL = ""

	if _, err := buildSteps(cfg); err == nil {
		t.Fatal("buildSteps accepted a fetch step without a URL")
	}
}

func TestBuildSteps_OrderPreserved(t *testing.T) {
	cfg := config.Default()
	cfg.Run.Steps = []string{"sleep", "watch", "sleep"}

	steps, err := buildSteps(cfg)
	if err != nil {
		t.Fatalf("buildSteps: %v", err)
	}
	want := []string{"sleep", "watch", "sleep"}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, s := range steps {
		if s.Name != want[i] {
			t.Errorf("step %d = %q, want %q", i, s.Name, want[i])
		}
	}
}

// ///////////////////////////////////////////////
// Console Writer
// ///////////////////////////////////////////////

func TestConsoleWriter(t *testing.T) {
	// A disabled console must be a nil interface value, not a typed-nil
	// *os.File, or the logger would tee records into a nil writer.
	if w := consoleWriter(false); w != nil {
		t.Fatalf("disabled console writer = %#v, want nil", w)
	}
	if consoleWriter(true) != os.Stderr {
		t.Fatal("enabled console writer is not stderr")
	}
}

// ///////////////////////////////////////////////
// Run Execution
// ///////////////////////////////////////////////

func TestRunSteps_AllSucceed(t *testing.T) {
	steps := []step{
		{Name: "a", Run: sigrace.Value("done a")},
		{Name: "b", Run: sigrace.Value("done b")},
	}
	results, code := runSteps(context.Background(), steps)
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d", code, exitOK)
	}
	if len(results) != 2 || results[1].Summary != "done b" {
		t.Fatalf("results = %+v", results)
	}
}

func TestRunSteps_FailureContinues(t *testing.T) {
	steps := []step{
		{Name: "bad", Run: sigrace.Fail[string](os.ErrPermission)},
		{Name: "good", Run: sigrace.Value("done")},
	}
	results, code := runSteps(context.Background(), steps)
	if code != exitFailed {
		t.Fatalf("exit code = %d, want %d", code, exitFailed)
	}
	if len(results) != 2 {
		t.Fatalf("failed step aborted the run: %+v", results)
	}
	if results[0].Error == "" {
		t.Error("failed step result missing error")
	}
	if results[1].Summary != "done" {
		t.Errorf("later step did not run: %+v", results[1])
	}
}

func TestRunSteps_InterruptStopsRun(t *testing.T) {
	ran := false
	steps := []step{
		{Name: "first", Run: sigrace.Fail[string](sigrace.ErrInterrupted)},
		{Name: "second", Run: func(context.Context) (string, error) {
			ran = true
			return "should not run", nil
		}},
	}
	results, code := runSteps(context.Background(), steps)
	if code != exitInterrupted {
		t.Fatalf("exit code = %d, want %d", code, exitInterrupted)
	}
	if len(results) != 1 || !results[0].Interrupted {
		t.Fatalf("results = %+v, want one interrupted result", results)
	}
	if ran {
		t.Error("step after the interrupt still ran")
	}
}

// ///////////////////////////////////////////////
// Report
// ///////////////////////////////////////////////

func TestWriteReport_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	in := []stepResult{
		{Name: "fetch", Summary: "fetched 42 bytes", DurationMS: 17},
		{Name: "watch", Interrupted: true, DurationMS: 1042},
	}

	if err := writeReport(path, in); err != nil {
		t.Fatalf("writeReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var out []stepResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out) != 2 || out[0].Summary != in[0].Summary || !out[1].Interrupted {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

// ///////////////////////////////////////////////
// Control Endpoint
// ///////////////////////////////////////////////

// testControl starts a control server on loopback TCP with a recording stop
// function, returning the control and a dial helper.
func testControl(t *testing.T) (*control, func() net.Conn, *atomic.Int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var stops atomic.Int32
	c := newControl(ln)
	c.stop = func() error {
		stops.Add(1)
		return nil
	}
	go c.serve()
	t.Cleanup(func() { c.Close() })

	dial := func() net.Conn {
		conn, dialErr := net.Dial("tcp", ln.Addr().String())
		if dialErr != nil {
			t.Fatalf("dial: %v", dialErr)
		}
		return conn
	}
	return c, dial, &stops
}

// roundTrip sends one command line and returns the reply line.
func roundTrip(t *testing.T, conn net.Conn, cmd string) string {
	t.Helper()
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return strings.TrimSpace(reply)
}

func TestControl_StopRaisesInterrupt(t *testing.T) {
	_, dial, stops := testControl(t)

	if got := roundTrip(t, dial(), "stop"); got != "ok" {
		t.Fatalf("reply = %q, want ok", got)
	}
	if got := stops.Load(); got != 1 {
		t.Fatalf("stop invoked %d times, want 1", got)
	}
}

func TestControl_Ping(t *testing.T) {
	_, dial, stops := testControl(t)

	if got := roundTrip(t, dial(), "ping"); got != "pong" {
		t.Fatalf("reply = %q, want pong", got)
	}
	if stops.Load() != 0 {
		t.Fatal("ping must not raise the interrupt")
	}
}

func TestControl_UnknownCommand(t *testing.T) {
	_, dial, _ := testControl(t)

	if got := roundTrip(t, dial(), "reboot"); got != "unknown" {
		t.Fatalf("reply = %q, want unknown", got)
	}
}

func TestControl_CloseIdempotent(t *testing.T) {
	c, _, _ := testControl(t)
	if err := c.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

func TestResolveVersion_NotEmpty(t *testing.T) {
	if resolveVersion() == "" {
		t.Fatal("resolveVersion returned an empty string")
	}
}
