package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DeusData/i18n-extract/internal/catalog"
)

// Metrics exposes catalog statistics as Prometheus gauges. One Metrics is
// reused across watch-mode runs; every Observe overwrites the gauges.
type Metrics struct {
	registry *prometheus.Registry

	Runs              prometheus.Counter
	Messages          prometheus.Gauge
	Plurals           prometheus.Gauge
	Usages            prometheus.Gauge
	Contexts          prometheus.Gauge
	FilesParsed       prometheus.Gauge
	FilesWithMessages prometheus.Gauge
	Failures          prometheus.Gauge
	DurationSeconds   prometheus.Gauge
	UsagesByFunction  *prometheus.GaugeVec
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "i18n_extract", Name: name, Help: help})
}

// NewMetrics creates the gauges on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "i18n_extract",
			Name:      "runs_total",
			Help:      "Number of completed extraction runs",
		}),
		Messages:          gauge("messages", "Distinct (context, text) messages"),
		Plurals:           gauge("plurals", "Messages with a plural form"),
		Usages:            gauge("usages", "Accepted marker calls"),
		Contexts:          gauge("contexts", "Distinct message contexts"),
		FilesParsed:       gauge("files_parsed", "Files walked"),
		FilesWithMessages: gauge("files_with_messages", "Files with at least one accepted call"),
		Failures:          gauge("failures", "Files skipped by parse or read errors"),
		DurationSeconds:   gauge("duration_seconds", "Wall time of the last run"),
		UsagesByFunction: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "i18n_extract",
			Name:      "usages_by_function",
			Help:      "Accepted marker calls per function",
		}, []string{"function"}),
	}
	m.registry.MustRegister(
		m.Runs,
		m.Messages,
		m.Plurals,
		m.Usages,
		m.Contexts,
		m.FilesParsed,
		m.FilesWithMessages,
		m.Failures,
		m.DurationSeconds,
		m.UsagesByFunction,
	)
	return m
}

// Observe records one finished run.
func (m *Metrics) Observe(s catalog.Stats, failures int, seconds float64) {
	m.Runs.Inc()
	m.Messages.Set(float64(s.Messages))
	m.Plurals.Set(float64(s.Plurals))
	m.Usages.Set(float64(s.Usages))
	m.Contexts.Set(float64(s.Contexts))
	m.FilesParsed.Set(float64(s.FilesParsed))
	m.FilesWithMessages.Set(float64(s.FilesWithMessages))
	m.Failures.Set(float64(failures))
	m.DurationSeconds.Set(seconds)
	m.UsagesByFunction.Reset()
	for fn, n := range s.UsageBreakdown {
		m.UsagesByFunction.WithLabelValues(fn).Set(float64(n))
	}
}

// WriteTextfile writes the gauges in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
