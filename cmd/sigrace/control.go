package main

import (
	"bufio"
	"log/slog"
	"net"
	"strings"
	"sync"

	"tools.zach/dev/sigrace"
	"tools.zach/dev/sigrace/internal/paths"
)

// ///////////////////////////////////////////////
// Control Endpoint
// ///////////////////////////////////////////////

// control accepts "stop" requests on a local listener and converts them into
// a raised interrupt, so external tooling can stop a run exactly the way
// Ctrl+C would — the running step resolves with the interrupt error. This
// matters most on Windows, where no equivalent of kill(2) exists for
// delivering a console interrupt across processes.
type control struct {
	ln net.Listener
	// stop raises the process interrupt. It is a field so tests can
	// observe stop requests without delivering a real signal.
	stop func() error
	once sync.Once
}

// startControl opens the platform listener (a Unix socket in the data
// directory, or a named pipe on Windows) and begins serving requests.
func startControl(dd paths.DataDir) (*control, error) {
	ln, err := listenControl(dd)
	if err != nil {
		return nil, err
	}
	c := newControl(ln)
	go c.serve()
	return c, nil
}

func newControl(ln net.Listener) *control {
	return &control{ln: ln, stop: sigrace.Raise}
}

// Addr returns the listener address, for logging.
func (c *control) Addr() string { return c.ln.Addr().String() }

// serve accepts connections until the listener is closed.
func (c *control) serve() {
	for {
		conn, err := c.ln.Accept()
		if err != nil {
			return // listener closed
		}
		go c.handle(conn)
	}
}

// handle processes one line-oriented command per connection: "stop" raises
// the interrupt, "ping" answers "pong".
func (c *control) handle(conn net.Conn) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	switch strings.TrimSpace(line) {
	case "stop":
		slog.Info("stop requested via control endpoint")
		if raiseErr := c.stop(); raiseErr != nil {
			slog.Warn("failed to raise interrupt", "error", raiseErr)
			conn.Write([]byte("error\n"))
			return
		}
		conn.Write([]byte("ok\n"))
	case "ping":
		conn.Write([]byte("pong\n"))
	default:
		conn.Write([]byte("unknown\n"))
	}
}

// Close stops the accept loop and releases the listener. Idempotent.
func (c *control) Close() error {
	var err error
	c.once.Do(func() { err = c.ln.Close() })
	return err
}
