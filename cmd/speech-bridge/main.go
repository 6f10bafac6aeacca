// package main implements the desktop side of the beeves speech link.
// It connects to the registered "beeves_speech_server" native messaging
// host, logs every message the host sends, and relays a literal "ping"
// each time the user triggers it (SIGUSR1 or a line on stdin, the
// stand-in for the browser's toolbar click).
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/beeves/speech-bridge/internal/config"
	"github.com/beeves/speech-bridge/internal/link"
	"github.com/beeves/speech-bridge/internal/logging"
	"github.com/beeves/speech-bridge/internal/telemetry"
	"github.com/beeves/speech-bridge/internal/trigger"
)

func main() {
	cfgPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup logger")
	}
	log.Logger = logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var collector telemetry.Collector = telemetry.Noop()
	if cfg.MetricsListen != "" {
		prom, err := telemetry.NewPrometheusCollector(nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to register metrics")
		}
		collector = prom
		go serveMetrics(cfg.MetricsListen, logger)
	}

	src, err := trigger.New(cfg.Trigger, os.Stdin)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid trigger configuration")
	}

	lnk := link.Open(ctx, link.Options{
		HostName:  cfg.HostName,
		Origin:    cfg.Origin,
		Logger:    logger,
		Collector: collector,
	})
	defer lnk.Close()

	logger.Info().
		Str("host", cfg.HostName).
		Str("trigger", cfg.Trigger).
		Bool("connected", lnk.Connected()).
		Msg("bridge ready")

	events := src.Listen(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			return
		case _, ok := <-events:
			if !ok {
				logger.Info().Msg("trigger source ended, shutting down")
				return
			}
			lnk.Ping()
		}
	}
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics endpoint failed")
	}
}
