package link

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/beeves/speech-bridge/internal/nativemsg"
)

const waitFor = 2 * time.Second
const tick = 10 * time.Millisecond

type countingCollector struct {
	inbound      atomic.Int64
	pingsSent    atomic.Int64
	sendFailures atomic.Int64
}

func (c *countingCollector) IncInbound()     { c.inbound.Add(1) }
func (c *countingCollector) IncPingSent()    { c.pingsSent.Add(1) }
func (c *countingCollector) IncSendFailure() { c.sendFailures.Add(1) }

// logBuffer is a goroutine-safe sink for zerolog output.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuffer) count(substr string) int {
	return strings.Count(b.String(), substr)
}

func frame(payload []byte) []byte {
	buf := make([]byte, 4+len(payload))
	binary.NativeEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return buf
}

// newTestLink wires a Link over in-memory pipes standing in for the
// host's stdout and stdin.
func newTestLink(t *testing.T) (*Link, *io.PipeWriter, *io.PipeReader, *logBuffer, *countingCollector) {
	t.Helper()

	in, inPipe := io.Pipe()
	outPipe, out := io.Pipe()
	conn := nativemsg.New(in, out)
	go conn.Start()

	sink := &logBuffer{}
	collector := &countingCollector{}
	l := New(conn, zerolog.New(sink), collector)
	return l, inPipe, outPipe, sink, collector
}

func TestLinkLogsEachInboundMessage(t *testing.T) {
	l, inPipe, _, sink, collector := newTestLink(t)
	defer l.Close()

	payload := []byte(`{"status":"ok"}`)
	_, err := inPipe.Write(frame(payload))
	require.NoError(t, err)
	_, err = inPipe.Write(frame(payload))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return collector.inbound.Load() == 2
	}, waitFor, tick)

	require.Equal(t, 2, sink.count(`{\"status\":\"ok\"}`))
	require.Equal(t, 2, sink.count(`"message":"received"`))
	// Inbound traffic never provokes an outbound send.
	require.Equal(t, 0, sink.count(`"message":"sending"`))
	require.Equal(t, int64(0), collector.pingsSent.Load())
}

func TestLinkPingSendsLiteralPing(t *testing.T) {
	l, _, outPipe, sink, collector := newTestLink(t)
	defer l.Close()

	readDone := make(chan []byte, 1)
	go func() {
		buf := make([]byte, len(frame(pingPayload)))
		if _, err := io.ReadFull(outPipe, buf); err == nil {
			readDone <- buf
		}
	}()

	l.Ping()

	select {
	case wire := <-readDone:
		require.Equal(t, frame([]byte(`"ping"`)), wire)
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for ping frame")
	}

	require.Equal(t, int64(1), collector.pingsSent.Load())
	require.Equal(t, int64(0), collector.sendFailures.Load())
	require.Equal(t, 1, sink.count(`"message":"sending"`))
	require.Contains(t, sink.String(), `\"ping\"`)
}

func TestLinkPingAfterHostExit(t *testing.T) {
	l, inPipe, _, sink, collector := newTestLink(t)

	// Host goes away.
	require.NoError(t, inPipe.Close())
	require.Eventually(t, func() bool {
		return sink.count("host closed the connection") == 1
	}, waitFor, tick)

	l.Ping()

	require.Equal(t, int64(1), collector.sendFailures.Load())
	require.Equal(t, int64(0), collector.pingsSent.Load())
	require.Contains(t, sink.String(), ErrSendFailed.Error())
}

func TestOpenUnregisteredHost(t *testing.T) {
	sink := &logBuffer{}
	collector := &countingCollector{}

	l := Open(context.Background(), Options{
		HostName:  "beeves_speech_server",
		Origin:    "test-origin",
		Dirs:      []string{t.TempDir()},
		Logger:    zerolog.New(sink),
		Collector: collector,
	})
	defer l.Close()

	require.False(t, l.Connected())
	require.Contains(t, sink.String(), "cannot resolve host")

	// Pings on a dead link are dropped, not surfaced.
	l.Ping()
	require.Equal(t, int64(1), collector.sendFailures.Load())
	require.Contains(t, sink.String(), ErrConnectionUnavailable.Error())
}

func TestOpenSpawnsRegisteredHost(t *testing.T) {
	const catPath = "/bin/cat"
	if _, err := os.Stat(catPath); err != nil {
		t.Skipf("%s not available: %v", catPath, err)
	}

	dir := t.TempDir()
	manifest := `{"name":"beeves_speech_server","path":"` + catPath + `","type":"stdio"}`
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "beeves_speech_server.json"), []byte(manifest), 0644))

	sink := &logBuffer{}
	collector := &countingCollector{}

	l := Open(context.Background(), Options{
		HostName: "beeves_speech_server",
		// cat interprets "-" as stdin, making it an echo host.
		Origin:    "-",
		Dirs:      []string{dir},
		Logger:    zerolog.New(sink),
		Collector: collector,
	})

	require.True(t, l.Connected())

	// The echoed ping comes back as an inbound message.
	l.Ping()
	require.Eventually(t, func() bool {
		return collector.inbound.Load() == 1
	}, waitFor, tick)
	require.Equal(t, int64(1), collector.pingsSent.Load())
	require.Equal(t, 1, sink.count(`"message":"received"`))

	l.Close()
}
