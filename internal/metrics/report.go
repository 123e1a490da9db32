package metrics

import (
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// HostReport holds aggregate statistics for one host. It is built once by
// Aggregate and not modified afterwards.
//
// Success + Failed + Errors + Other always equals Total.
type HostReport struct {
	Host    string
	Total   int
	Success int
	Failed  int
	Errors  int
	Other   int

	// MeanLatency is the mean over successful requests; zero when Success == 0.
	MeanLatency time.Duration
	P50Latency  time.Duration
	P90Latency  time.Duration
	P99Latency  time.Duration

	// StatusCodes counts every received status code, including failed and other.
	StatusCodes map[int]int
	// ErrorKinds counts transport failures by ErrorKind label.
	ErrorKinds map[string]int

	minLatency time.Duration
	maxLatency time.Duration
	hasLatency bool
}

// Min returns the fastest successful latency. ok is false when there were no successes.
func (r HostReport) Min() (latency time.Duration, ok bool) {
	return r.minLatency, r.hasLatency
}

// Max returns the slowest successful latency. ok is false when there were no successes.
func (r HostReport) Max() (latency time.Duration, ok bool) {
	return r.maxLatency, r.hasLatency
}

// SuccessRate returns Success/Total, or 0 for an empty report.
func (r HostReport) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Success) / float64(r.Total)
}

// newLatencyHistogram tracks latencies from 1µs up to 60s with 3 significant figures.
func newLatencyHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, 60_000_000, 3)
}

// Aggregate folds the outcomes of one host into a HostReport. It is pure:
// the same outcomes always produce the same report.
func Aggregate(host string, outcomes []Outcome) HostReport {
	report := HostReport{
		Host:  host,
		Total: len(outcomes),
	}

	var sum time.Duration
	hist := newLatencyHistogram()

	for _, o := range outcomes {
		if o.Kind == OutcomeOK {
			if report.StatusCodes == nil {
				report.StatusCodes = make(map[int]int)
			}
			report.StatusCodes[o.StatusCode]++
		}

		switch Classify(o) {
		case ClassSuccess:
			report.Success++
			sum += o.Elapsed
			if !report.hasLatency || o.Elapsed < report.minLatency {
				report.minLatency = o.Elapsed
			}
			if !report.hasLatency || o.Elapsed > report.maxLatency {
				report.maxLatency = o.Elapsed
			}
			report.hasLatency = true
			recordLatency(hist, o.Elapsed)
		case ClassFailed:
			report.Failed++
		case ClassError:
			report.Errors++
			if report.ErrorKinds == nil {
				report.ErrorKinds = make(map[string]int)
			}
			report.ErrorKinds[ErrorKind(o.Err)]++
		default:
			report.Other++
		}
	}

	if report.Success > 0 {
		report.MeanLatency = sum / time.Duration(report.Success)
		report.P50Latency = time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond
		report.P90Latency = time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond
		report.P99Latency = time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond
	}

	return report
}

func recordLatency(hist *hdrhistogram.Histogram, latency time.Duration) {
	us := latency.Microseconds()
	if us < hist.LowestTrackableValue() {
		us = hist.LowestTrackableValue()
	}
	if us > hist.HighestTrackableValue() {
		us = hist.HighestTrackableValue()
	}
	_ = hist.RecordValue(us)
}

// Summary is the serialisable view of a HostReport. Latencies are in
// milliseconds rounded to one decimal; Min/Max are nil when absent.
type Summary struct {
	Host         string         `json:"host" yaml:"host"`
	Total        int            `json:"total" yaml:"total"`
	Success      int            `json:"success" yaml:"success"`
	Failed       int            `json:"failed" yaml:"failed"`
	Errors       int            `json:"errors" yaml:"errors"`
	Other        int            `json:"other" yaml:"other"`
	MinLatencyMs *float64       `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMs *float64       `json:"max_latency_ms" yaml:"max_latency_ms"`
	AvgLatencyMs float64        `json:"avg_latency_ms" yaml:"avg_latency_ms"`
	P50LatencyMs float64        `json:"p50_latency_ms" yaml:"p50_latency_ms"`
	P90LatencyMs float64        `json:"p90_latency_ms" yaml:"p90_latency_ms"`
	P99LatencyMs float64        `json:"p99_latency_ms" yaml:"p99_latency_ms"`
	StatusCodes  map[int]int    `json:"status_codes,omitempty" yaml:"status_codes,omitempty"`
	ErrorKinds   map[string]int `json:"error_kinds,omitempty" yaml:"error_kinds,omitempty"`
}

// Summary converts the report into its serialisable form.
func (r HostReport) Summary() Summary {
	s := Summary{
		Host:         r.Host,
		Total:        r.Total,
		Success:      r.Success,
		Failed:       r.Failed,
		Errors:       r.Errors,
		Other:        r.Other,
		AvgLatencyMs: RoundMs(r.MeanLatency),
		P50LatencyMs: RoundMs(r.P50Latency),
		P90LatencyMs: RoundMs(r.P90Latency),
		P99LatencyMs: RoundMs(r.P99Latency),
		StatusCodes:  r.StatusCodes,
		ErrorKinds:   r.ErrorKinds,
	}
	if fastest, ok := r.Min(); ok {
		v := RoundMs(fastest)
		s.MinLatencyMs = &v
	}
	if slowest, ok := r.Max(); ok {
		v := RoundMs(slowest)
		s.MaxLatencyMs = &v
	}
	return s
}

// RoundMs converts d to milliseconds rounded to one decimal place.
func RoundMs(d time.Duration) float64 {
	return math.Round(durationMs(d)*10) / 10
}
