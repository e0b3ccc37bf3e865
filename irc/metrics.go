// Copyright (c) 2026 The ircrelay Authors
// released under the MIT license

package irc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ergochat/ircrelay/irc/protocol"
)

const metricsNamespace = "ircrelay"

// Metrics holds the server's Prometheus collectors. Each server gets its
// own registry so that tests can run servers side by side.
type Metrics struct {
	registry *prometheus.Registry

	connectionsAccepted prometheus.Counter
	messagesProcessed   *prometheus.CounterVec
	parseErrors         prometheus.Counter
	linesSent           prometheus.Counter
	deliveryFailures    prometheus.Counter
}

// NewMetrics creates and registers the collectors. sessionCount and
// channelCount are sampled at scrape time.
func NewMetrics(sessionCount, channelCount func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connections_accepted_total",
			Help:      "Number of client connections accepted",
		}),
		messagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_processed_total",
			Help:      "Number of messages processed by message command",
		}, []string{"command"}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parse_errors_total",
			Help:      "Number of client lines that could not be parsed",
		}),
		linesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lines_sent_total",
			Help:      "Number of lines queued to clients",
		}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "delivery_failures_total",
			Help:      "Number of lines that could not be queued to a client",
		}),
	}

	m.registry.MustRegister(
		m.connectionsAccepted,
		m.messagesProcessed,
		m.parseErrors,
		m.linesSent,
		m.deliveryFailures,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions",
			Help:      "Number of connected sessions",
		}, func() float64 { return float64(sessionCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "channels",
			Help:      "Number of channels",
		}, func() float64 { return float64(channelCount()) }),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

func (m *Metrics) MessageProcessed(command protocol.Command) {
	m.messagesProcessed.WithLabelValues(command.String()).Inc()
}

func (m *Metrics) ParseError() {
	m.parseErrors.Inc()
}

func (m *Metrics) LinesSent(count int) {
	m.linesSent.Add(float64(count))
}

func (m *Metrics) DeliveryFailed(count int) {
	m.deliveryFailures.Add(float64(count))
}
