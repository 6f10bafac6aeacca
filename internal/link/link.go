// Package link ties the bridge to its native messaging host: it owns
// the single connection, logs every inbound message, and relays a ping
// on each user trigger.
package link

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/beeves/speech-bridge/internal/nativemsg"
	"github.com/beeves/speech-bridge/internal/registry"
	"github.com/beeves/speech-bridge/internal/telemetry"
)

var (
	// ErrConnectionUnavailable means the host could not be resolved or
	// launched; the link exists but cannot carry messages.
	ErrConnectionUnavailable = errors.New("native messaging host unavailable")

	// ErrSendFailed means the channel shut down underneath a send.
	ErrSendFailed = errors.New("send failed, channel closed")
)

// pingPayload is the only outbound message shape: the JSON encoding of
// the string "ping".
var pingPayload = []byte(`"ping"`)

// Options configures Open.
type Options struct {
	// HostName is the registered native messaging host name.
	HostName string

	// Origin is handed to the host as its first argument.
	Origin string

	// Dirs overrides the platform manifest search path.  Empty means
	// the platform default.
	Dirs []string

	Logger    zerolog.Logger
	Collector telemetry.Collector
}

// Link is the process-wide handle to the native messaging channel.  At
// most one connection exists for the lifetime of a Link; there is no
// reconnection.  A Link whose connection could not be established still
// works, it just drops pings and reports them as failures.
type Link struct {
	logger    zerolog.Logger
	collector telemetry.Collector

	conn *nativemsg.Conn
	host *nativemsg.Host
	wg   sync.WaitGroup
}

// Open resolves the named host, launches it, and returns a running
// Link.  Open never fails: per the browser's behavior the user is not
// notified when a host is missing, so resolution and spawn errors are
// logged and the Link comes back disconnected.
func Open(ctx context.Context, opts Options) *Link {
	logger := opts.Logger.With().Str("host", opts.HostName).Logger()
	collector := opts.Collector
	if collector == nil {
		collector = telemetry.Noop()
	}

	manifest, err := resolve(opts)
	if err != nil {
		logger.Error().Err(err).Msg("cannot resolve host, link is down")
		return &Link{logger: logger, collector: collector}
	}

	host, err := nativemsg.Spawn(ctx, manifest.Path, opts.Origin)
	if err != nil {
		logger.Error().Err(err).Msg("cannot launch host, link is down")
		return &Link{logger: logger, collector: collector}
	}
	go host.Conn.Start()

	logger.Info().Str("path", manifest.Path).Msg("connected to host")

	l := New(host.Conn, logger, collector)
	l.host = host
	return l
}

// New wraps an established connection whose event loop is already
// running.  It starts logging inbound messages immediately.
func New(conn *nativemsg.Conn, logger zerolog.Logger, collector telemetry.Collector) *Link {
	l := &Link{
		logger:    logger,
		collector: collector,
		conn:      conn,
	}
	l.wg.Add(1)
	go l.readLoop()
	return l
}

func resolve(opts Options) (*registry.Manifest, error) {
	if len(opts.Dirs) > 0 {
		return registry.ResolveIn(opts.Dirs, opts.HostName)
	}
	return registry.Resolve(opts.HostName)
}

// readLoop logs each inbound message.  Messages are never interpreted
// or answered, only serialized into the log.
func (l *Link) readLoop() {
	defer l.wg.Done()
	for msg := range l.conn.Messages() {
		l.logger.Info().Str("payload", string(msg)).Msg("received")
		l.collector.IncInbound()
	}
	l.logger.Info().Msg("host closed the connection")
}

// Connected reports whether the link has a live connection.
func (l *Link) Connected() bool {
	return l.conn != nil
}

// Ping sends the literal "ping" payload, fire and forget.  Failures
// are logged and counted, never returned: the caller has nothing to do
// about them.
func (l *Link) Ping() {
	if l.conn == nil {
		l.logger.Warn().Err(ErrConnectionUnavailable).Msg("dropping ping")
		l.collector.IncSendFailure()
		return
	}

	l.logger.Info().Str("payload", string(pingPayload)).Msg("sending")
	if err := l.conn.Send(pingPayload); err != nil {
		l.logger.Warn().Err(ErrSendFailed).Msg("dropping ping")
		l.collector.IncSendFailure()
		return
	}
	l.collector.IncPingSent()
}

// Close shuts the connection down and reaps the host process.
func (l *Link) Close() {
	if l.conn == nil {
		return
	}
	l.conn.Close()
	l.wg.Wait()
	if l.host != nil {
		if err := l.host.Wait(); err != nil {
			l.logger.Warn().Err(err).Msg("host exited with error")
		}
	}
}
