package nativemsg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Host is a running native messaging host process together with the
// Conn speaking to it over its standard streams.
type Host struct {
	// Conn is connected to the process's stdin and stdout.  The caller
	// must run Conn.Start() to begin relaying frames.
	Conn *Conn

	cmd *exec.Cmd
}

// Spawn launches the host binary at path and returns a Host whose Conn
// is wired to the process's standard streams.  The caller's origin is
// passed as the first argument, the way the browser identifies itself
// to a host.  The process's stderr is passed through to this process's
// stderr.
func Spawn(ctx context.Context, path, origin string) (*Host, error) {
	cmd := exec.CommandContext(ctx, path, origin)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening host stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening host stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting host %s: %w", path, err)
	}

	return &Host{
		Conn: New(stdout, stdin),
		cmd:  cmd,
	}, nil
}

// Wait reaps the host process.  It must be called after the Conn has
// shut down (closing the Conn closes the process's stdin, which is the
// signal for a well-behaved host to exit).
func (h *Host) Wait() error {
	return h.cmd.Wait()
}
