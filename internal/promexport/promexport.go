// Package promexport publishes batch results as Prometheus gauges in the
// node_exporter textfile collector format.
package promexport

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/torosent/hostbench/internal/metrics"
	"github.com/torosent/hostbench/internal/runner"
)

const namespace = "hostbench"

// Exporter owns a private registry so repeated exports never collide with
// the default one.
type Exporter struct {
	registry  *prometheus.Registry
	requests  *prometheus.GaugeVec
	latency   *prometheus.GaugeVec
	ratio     *prometheus.GaugeVec
	hosts     *prometheus.GaugeVec
	batchInfo *prometheus.GaugeVec
	duration  prometheus.Gauge
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "requests",
				Help:      "Requests per host by outcome class.",
			},
			[]string{"host", "class"},
		),
		latency: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "latency_ms",
				Help:      "Latency of successful requests per host in milliseconds.",
			},
			[]string{"host", "stat"},
		),
		ratio: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "success_ratio",
				Help:      "Fraction of requests per host that returned 2xx.",
			},
			[]string{"host"},
		),
		hosts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "batch",
				Name:      "hosts",
				Help:      "Hosts in the batch by state.",
			},
			[]string{"state"},
		),
		batchInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "batch",
				Name:      "info",
				Help:      "Constant 1 labelled with the batch id and mode.",
			},
			[]string{"batch_id", "mode"},
		),
		duration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "batch",
				Name:      "duration_seconds",
				Help:      "Wall-clock duration of the batch.",
			},
		),
	}
	e.registry.MustRegister(e.requests, e.latency, e.ratio, e.hosts, e.batchInfo, e.duration)
	return e
}

// Record replaces the exported values with those of batch.
func (e *Exporter) Record(batch runner.Batch) {
	e.requests.Reset()
	e.latency.Reset()
	e.ratio.Reset()
	e.hosts.Reset()
	e.batchInfo.Reset()

	e.batchInfo.WithLabelValues(batch.ID.String(), string(batch.Mode)).Set(1)
	e.duration.Set(batch.Duration.Seconds())
	e.hosts.WithLabelValues("tested").Set(float64(len(batch.Reports)))
	e.hosts.WithLabelValues("failed").Set(float64(len(batch.Failures)))

	for _, r := range batch.Reports {
		e.recordHost(r)
	}
}

func (e *Exporter) recordHost(r metrics.HostReport) {
	e.requests.WithLabelValues(r.Host, metrics.ClassSuccess.String()).Set(float64(r.Success))
	e.requests.WithLabelValues(r.Host, metrics.ClassFailed.String()).Set(float64(r.Failed))
	e.requests.WithLabelValues(r.Host, metrics.ClassError.String()).Set(float64(r.Errors))
	e.requests.WithLabelValues(r.Host, metrics.ClassOther.String()).Set(float64(r.Other))
	e.ratio.WithLabelValues(r.Host).Set(r.SuccessRate())

	// Hosts without a successful request export no latency series at all.
	if r.Success == 0 {
		return
	}
	fastest, _ := r.Min()
	slowest, _ := r.Max()
	e.latency.WithLabelValues(r.Host, "min").Set(metrics.RoundMs(fastest))
	e.latency.WithLabelValues(r.Host, "max").Set(metrics.RoundMs(slowest))
	e.latency.WithLabelValues(r.Host, "avg").Set(metrics.RoundMs(r.MeanLatency))
	e.latency.WithLabelValues(r.Host, "p50").Set(metrics.RoundMs(r.P50Latency))
	e.latency.WithLabelValues(r.Host, "p90").Set(metrics.RoundMs(r.P90Latency))
	e.latency.WithLabelValues(r.Host, "p99").Set(metrics.RoundMs(r.P99Latency))
}

// Gatherer exposes the registry so callers can serve or inspect the
// recorded values.
func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.registry
}

// WriteTextfile atomically writes the current values to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write prometheus textfile: %w", err)
	}
	return nil
}

// Export records batch and writes it to path in one step.
func Export(path string, batch runner.Batch) error {
	e := NewExporter()
	e.Record(batch)
	return e.WriteTextfile(path)
}
