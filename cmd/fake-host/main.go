// package main implements a stand-in for beeves_speech_server: a
// native messaging host that answers every message with a hotword
// detection event.  Register it under the beeves_speech_server name to
// exercise the bridge without a microphone.
package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/beeves/speech-bridge/internal/nativemsg"
)

// event mirrors the payload the real speech server emits when it hears
// its keyword.
type event struct {
	Hotword   string `json:"hotword"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	conn := nativemsg.New(os.Stdin, os.Stdout)
	go conn.Start()
	defer conn.Close()

	for msg := range conn.Messages() {
		logger.Info().Str("payload", string(msg)).Msg("received")

		reply, err := json.Marshal(event{
			Hotword:   "bumblebee",
			Message:   "detected",
			Timestamp: time.Now().Format(time.RFC3339Nano),
		})
		if err != nil {
			logger.Error().Err(err).Msg("encoding event")
			continue
		}
		if err := conn.Send(reply); err != nil {
			logger.Error().Err(err).Msg("sending event")
			return
		}
	}
	// Browser destroyed the native messaging port, clean exit.
}
