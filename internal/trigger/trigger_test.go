package trigger

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func collect(t *testing.T, events <-chan struct{}, want int) {
	t.Helper()
	for i := 0; i < want; i++ {
		select {
		case _, ok := <-events:
			require.True(t, ok, "channel closed after %d events, want %d", i, want)
		case <-time.After(waitFor):
			t.Fatalf("timeout after %d events, want %d", i, want)
		}
	}
}

func TestLinesOneEventPerLine(t *testing.T) {
	src := NewLines(strings.NewReader("click\n\nclick again\n"))
	events := src.Listen(context.Background())

	collect(t, events, 3)

	select {
	case _, ok := <-events:
		require.False(t, ok, "wanted channel closed at EOF")
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for close at EOF")
	}
}

func TestLinesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, w := io.Pipe()
	defer w.Close()

	src := NewLines(r)
	events := src.Listen(ctx)

	go func() {
		w.Write([]byte("click\n"))
	}()
	collect(t, events, 1)

	cancel()
	go func() {
		// Unblock the scanner so the goroutine can observe ctx.
		w.Write([]byte("click\n"))
	}()

	select {
	case _, ok := <-events:
		require.False(t, ok, "wanted channel closed after cancel")
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for close after cancel")
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New("dbus", nil)
	require.Error(t, err)
}

func TestNewStdin(t *testing.T) {
	src, err := New("stdin", strings.NewReader(""))
	require.NoError(t, err)
	require.IsType(t, &Lines{}, src)
}
