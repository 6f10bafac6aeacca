// Package trigger provides the user-event sources that stand in for
// the browser's toolbar click.
package trigger

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// A Source delivers one value per user trigger.  Events carry no
// parameters; their only meaning is that the user asked for a ping.
type Source interface {
	// Listen returns a channel that receives one value per trigger
	// event.  The channel is closed when ctx is cancelled or the
	// underlying event source ends.
	Listen(ctx context.Context) <-chan struct{}
}

// New builds the Source selected by kind: "signal" (SIGUSR1) or
// "stdin" (one event per input line).
func New(kind string, stdin io.Reader) (Source, error) {
	switch kind {
	case "signal":
		return newSignalSource()
	case "stdin":
		return NewLines(stdin), nil
	default:
		return nil, fmt.Errorf("unknown trigger source %q", kind)
	}
}

// Lines emits one event per line read from a stream, typically
// standard input.
type Lines struct {
	r io.Reader
}

// NewLines returns a Lines source reading from r.
func NewLines(r io.Reader) *Lines {
	return &Lines{r: r}
}

// Listen delivers one event per line until EOF or cancellation.  The
// line's contents are ignored; an empty line counts.
func (l *Lines) Listen(ctx context.Context) <-chan struct{} {
	events := make(chan struct{})

	go func() {
		defer close(events)
		scanner := bufio.NewScanner(l.r)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}
			select {
			case events <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events
}
