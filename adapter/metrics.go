// Package adapter connects the bridge to external monitoring: prometheus
// metrics, health endpoints and OpenTelemetry.
package adapter

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shmbridge"

// Metrics holds the bridge's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	MappingsCreated   prometheus.Counter
	MappingsOpen      prometheus.Gauge
	MappedBytes       prometheus.Gauge
	MountLinesSkipped *prometheus.CounterVec
	TeardownFailures  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		MappingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mappings_created_total",
			Help:      "Total number of file-backed mappings created.",
		}),
		MappingsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mappings_open",
			Help:      "Number of mappings currently held open.",
		}),
		MappedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mapped_bytes",
			Help:      "Total size of the mappings currently held open.",
		}),
		MountLinesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mount_lines_skipped_total",
			Help:      "Mount table lines that failed to parse.",
		}, []string{"source"}),
		TeardownFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "teardown_failures_total",
			Help:      "Failed teardown steps by operation.",
		}, []string{"op"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.MappingsCreated, m.MappingsOpen, m.MappedBytes, m.MountLinesSkipped, m.TeardownFailures,
	} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) MappingCreated(size uint64) {
	if m == nil {
		return
	}
	m.MappingsCreated.Inc()
	m.MappingsOpen.Inc()
	m.MappedBytes.Add(float64(size))
}

func (m *Metrics) MappingClosed(size uint64) {
	if m == nil {
		return
	}
	m.MappingsOpen.Dec()
	m.MappedBytes.Sub(float64(size))
}

func (m *Metrics) LinesSkipped(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MountLinesSkipped.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) TeardownFailed(op string) {
	if m == nil {
		return
	}
	m.TeardownFailures.WithLabelValues(op).Inc()
}
