package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry      *prometheus.Registry
	commands      *prometheus.CounterVec
	errors        *prometheus.CounterVec
	emptyRemovals *prometheus.CounterVec
	connections   prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memo",
			Name:      "commands_total",
			Help:      "Commands executed, by command name.",
		}, []string{"command"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memo",
			Name:      "command_errors_total",
			Help:      "Commands that returned an error, by command name.",
		}, []string{"command"}),
		emptyRemovals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memo",
			Name:      "empty_removals_total",
			Help:      "Removals attempted on an empty diary.",
		}, []string{"command"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memo",
			Name:      "connections",
			Help:      "Open client connections.",
		}),
	}
	m.registry.MustRegister(m.commands, m.errors, m.emptyRemovals, m.connections)
	return m
}

func (m *Metrics) CommandDone(name string) {
	m.commands.WithLabelValues(name).Inc()
}

func (m *Metrics) CommandFailed(name string) {
	m.errors.WithLabelValues(name).Inc()
}

func (m *Metrics) EmptyRemoval(name string) {
	m.emptyRemovals.WithLabelValues(name).Inc()
}

func (m *Metrics) ConnectionOpened() {
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	m.connections.Dec()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
