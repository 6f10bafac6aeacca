// Package nativemsg implements the browser side of the Chrome native
// messaging wire protocol: length-prefixed JSON payloads exchanged with
// a host process over its standard streams.
package nativemsg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// headerLen is the number of bytes in the native messaging length header.
const headerLen = 4

// MaxPayloadBytes is the maximum length in bytes of a single payload
// (not including the 4-byte header).  Chrome caps host-to-browser
// messages at 1 MB; frames claiming more than this are treated as
// protocol corruption.
const MaxPayloadBytes = 1 << 20

// ErrConnClosed is returned by Send after the connection has shut down.
var ErrConnClosed = errors.New("native messaging connection closed")

// Conn manages the I/O for one native messaging channel, from the
// connecting side.
//
// Create a Conn with New().  Run Start() (usually on its own goroutine)
// to begin the event loop.  Inbound payloads are delivered on the
// Messages() channel as they arrive; outbound payloads are queued with
// Send().  Terminate the channel with Close().
type Conn struct {
	// in receives payloads that were read from the host.
	// Only written to by Start(), only read via Messages().
	in chan []byte

	// out receives payloads that should be written to the host.
	// Only written to by Send(), only read by Start().
	out chan []byte

	// closed receives a value when the connection should be shut down.
	// Only written to by Close(), only read by Start() and Send().
	closed chan struct{}

	// done is closed when Start() returns, whatever the reason.
	done chan struct{}

	// reader is the stream carrying frames from the host (typically the
	// host process's stdout).  Accessed only by the goroutine spawned
	// by Start().
	reader io.Reader

	// writer is the stream carrying frames to the host (typically the
	// host process's stdin).  Only written to by Start().
	writer io.WriteCloser
}

// New returns a Conn that will read host frames from in and write
// frames to the host on out.  The streams must not be buffered.
func New(in io.Reader, out io.WriteCloser) *Conn {
	return &Conn{
		in:     make(chan []byte),
		out:    make(chan []byte),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
		reader: in,
		writer: out,
	}
}

// Start runs the event loop: it forwards frames read from the host to
// Messages(), and writes payloads queued with Send() to the host.
//
// Start returns when the host closes its end of the channel, when an
// I/O error occurs, or after Close() is called.  It closes the writer
// the Conn was created with, but not the reader.
func (c *Conn) Start() error {
	readerCh := make(chan []byte)

	// Read frames from c.reader and send them to readerCh.  This
	// goroutine has exclusive access to c.reader.  It runs until it
	// fails to read a frame from the host.
	go func(r io.Reader) {
		for {
			buf, err := readFrame(r)
			if err != nil || len(buf) == 0 {
				break
			}
			readerCh <- buf
		}
		close(readerCh)
	}(c.reader)

	defer close(c.done)
	defer close(c.in)
	defer c.writer.Close()

	for {
		select {
		case msg, ok := <-readerCh:
			if !ok {
				// Host-initiated shutdown.
				return nil
			}
			// Keep accepting writes while the consumer catches up; the
			// consumer may be replying to this very message.
		deliver:
			for {
				select {
				case c.in <- msg:
					break deliver
				case payload := <-c.out:
					if err := writeFrame(payload, c.writer); err != nil {
						return err
					}
				case <-c.closed:
					return nil
				}
			}
		case payload := <-c.out:
			if err := writeFrame(payload, c.writer); err != nil {
				return err
			}
		case <-c.closed:
			// Client-initiated shutdown.
			return nil
		}
	}
}

// Messages returns the channel on which inbound payloads are delivered.
// The channel is closed when the connection shuts down.
func (c *Conn) Messages() <-chan []byte {
	return c.in
}

// Send queues one payload for writing to the host.  It blocks until the
// event loop accepts the payload, and returns ErrConnClosed if the
// connection has already shut down.
func (c *Conn) Send(payload []byte) error {
	select {
	case c.out <- payload:
		return nil
	case <-c.closed:
		return ErrConnClosed
	case <-c.done:
		return ErrConnClosed
	}
}

// Close terminates the event loop.  No more payloads will be delivered
// or accepted afterwards.
func (c *Conn) Close() {
	close(c.closed)
}

// readFrame returns one native messaging payload read from in.
func readFrame(in io.Reader) ([]byte, error) {
	header := make([]byte, headerLen)
	switch n, err := io.ReadFull(in, header); {
	case n == 0 || err == io.EOF:
		// Clean shutdown from the host's end.
		return nil, io.EOF
	case err != nil:
		return nil, err
	}

	payloadLen := binary.NativeEndian.Uint32(header)
	if payloadLen > MaxPayloadBytes {
		return nil, fmt.Errorf("want at most %d-byte payload, got %d", MaxPayloadBytes, payloadLen)
	}

	payload := make([]byte, payloadLen)
	_, err := io.ReadFull(in, payload)
	return payload, err
}

// writeFrame sends one native messaging payload to the host.
func writeFrame(payload []byte, out io.Writer) error {
	buf := make([]byte, headerLen+len(payload))
	binary.NativeEndian.PutUint32(buf[:headerLen], uint32(len(payload)))
	copy(buf[headerLen:], payload)

	for len(buf) > 0 {
		switch n, err := out.Write(buf); {
		case n == 0:
			return io.EOF
		case err != nil:
			return err
		default:
			buf = buf[n:]
		}
	}
	return nil
}
