// Package telemetry counts the observable events of the bridge.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures telemetry events emitted by the link.
//
// Implementations should be inexpensive to call because hooks run
// inline with message dispatch.
type Collector interface {
	IncInbound()
	IncPingSent()
	IncSendFailure()
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncInbound()     {}
func (noopCollector) IncPingSent()    {}
func (noopCollector) IncSendFailure() {}

// PrometheusCollector exposes link counters via Prometheus.
type PrometheusCollector struct {
	inbound      prometheus.Counter
	pingsSent    prometheus.Counter
	sendFailures prometheus.Counter
}

// NewPrometheusCollector registers the link metrics with the provided
// registerer.  A nil registerer means the default one.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		inbound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speech_bridge_inbound_messages_total",
			Help: "Number of messages received from the native host.",
		}),
		pingsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speech_bridge_pings_sent_total",
			Help: "Number of ping payloads sent to the native host.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speech_bridge_send_failures_total",
			Help: "Number of sends that failed because the link was unavailable.",
		}),
	}

	for _, metric := range []prometheus.Collector{c.inbound, c.pingsSent, c.sendFailures} {
		if err := reg.Register(metric); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// IncInbound counts one message received from the host.
func (c *PrometheusCollector) IncInbound() {
	c.inbound.Inc()
}

// IncPingSent counts one ping handed to the connection.
func (c *PrometheusCollector) IncPingSent() {
	c.pingsSent.Inc()
}

// IncSendFailure counts one send that was dropped.
func (c *PrometheusCollector) IncSendFailure() {
	c.sendFailures.Inc()
}
