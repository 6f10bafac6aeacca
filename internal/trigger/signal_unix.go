//go:build !windows

package trigger

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// Signal emits one event per SIGUSR1 delivered to the process.
type Signal struct {
	sig os.Signal
}

func newSignalSource() (Source, error) {
	return &Signal{sig: unix.SIGUSR1}, nil
}

// Listen delivers one event per signal until cancellation.
func (s *Signal) Listen(ctx context.Context) <-chan struct{} {
	events := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, s.sig)

	go func() {
		defer close(events)
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				select {
				case events <- struct{}{}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return events
}
