package nativemsg

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"
)

func TestSpawnMissingBinary(t *testing.T) {
	_, err := Spawn(context.Background(), "/nonexistent/beeves_speech_server", "test-origin")
	if err == nil {
		t.Error("Spawn() of missing binary succeeded, wanted error")
	}
}

// TestSpawnEcho round-trips a frame through a real process.  cat with a
// "-" argument copies stdin to stdout, so every frame sent comes
// straight back.
func TestSpawnEcho(t *testing.T) {
	const catPath = "/bin/cat"
	if _, err := os.Stat(catPath); err != nil {
		t.Skipf("%s not available: %v", catPath, err)
	}

	host, err := Spawn(context.Background(), catPath, "-")
	if err != nil {
		t.Fatalf("Spawn() returned %v", err)
	}

	startDone := make(chan error)
	go func() {
		startDone <- host.Conn.Start()
	}()

	payload := []byte(`"ping"`)
	if err := host.Conn.Send(payload); err != nil {
		t.Fatalf("Send() returned %v", err)
	}

	select {
	case msg := <-host.Conn.Messages():
		if !bytes.Equal(msg, payload) {
			t.Errorf("Wanted echo %q, got %q", payload, msg)
		}
	case <-time.After(timeoutSeconds * time.Second):
		t.Fatal("Timeout waiting for echo")
	}

	host.Conn.Close()
	select {
	case <-startDone:
	case <-time.After(timeoutSeconds * time.Second):
		t.Fatal("Timeout waiting for Start() to return")
	}
	if err := host.Wait(); err != nil {
		t.Errorf("Wait() returned %v", err)
	}
}
