// Package threshold evaluates per-host assertions such as "latency:p99 < 500"
// against host reports.
package threshold

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/torosent/hostbench/internal/metrics"
)

// Threshold is one parsed assertion applied to every host report.
type Threshold struct {
	Metric    string  // latency, success, failed, errors or other
	Aggregate string  // p50, p90, p99, avg, min, max for latency; count or rate otherwise
	Operator  string  // <, <=, >, >=, ==
	Value     float64 // milliseconds for latency, a fraction for rate
	Raw       string
}

// Result is the outcome of one threshold against one host.
type Result struct {
	Threshold Threshold
	Host      string
	Actual    float64
	Pass      bool
	Message   string
}

// errNoLatency marks latency thresholds on hosts without a successful request.
var errNoLatency = errors.New("no successful requests")

var thresholdPattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

var (
	validMetrics    = []string{"latency", "success", "failed", "errors", "other"}
	latencyAggs     = []string{"p50", "p90", "p99", "avg", "min", "max"}
	counterAggs     = []string{"count", "rate"}
	validOperators  = []string{"<", "<=", ">", ">=", "=="}
	formatHintUsage = "expected format: metric:aggregate operator value, e.g. 'latency:p99 < 500'"
)

// Evaluator evaluates thresholds against host reports.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks every threshold against every report, host-major.
func (e *Evaluator) Evaluate(reports []metrics.HostReport) []Result {
	if len(e.thresholds) == 0 || len(reports) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds)*len(reports))
	for _, report := range reports {
		for _, t := range e.thresholds {
			results = append(results, evaluateOne(t, report))
		}
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func evaluateOne(t Threshold, report metrics.HostReport) Result {
	actual, err := extractValue(t, report)
	if err != nil {
		return Result{
			Threshold: t,
			Host:      report.Host,
			Pass:      false,
			Message:   fmt.Sprintf("✗ %s %s: %v", report.Host, t.Raw, err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}
	return Result{
		Threshold: t,
		Host:      report.Host,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s %s: %.2f %s %.2f", status, report.Host, t.Raw, actual, t.Operator, t.Value),
	}
}

// Parse parses a threshold string. Supported forms:
//   - "latency:p99 < 500"   (milliseconds; p50, p90, p99, avg, min, max)
//   - "failed:rate < 0.05"  (fraction of all requests)
//   - "errors:count == 0"
//   - "success:rate >= 0.99"
//   - "other:count < 3"
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, errors.New("empty threshold string")
	}

	m := thresholdPattern.FindStringSubmatch(s)
	if m == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (%s)", s, formatHintUsage)
	}
	metric, aggregate, operator := m[1], m[2], m[3]

	value, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", m[4], err)
	}

	if !slices.Contains(validMetrics, metric) {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: %s)", metric, strings.Join(validMetrics, ", "))
	}
	allowed := counterAggs
	if metric == "latency" {
		allowed = latencyAggs
	}
	if !slices.Contains(allowed, aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate %q for %s (supported: %s)", aggregate, metric, strings.Join(allowed, ", "))
	}
	if !slices.Contains(validOperators, operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: %s)", operator, strings.Join(validOperators, ", "))
	}

	return Threshold{
		Metric:    metric,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses every string and reports all failures together.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var issues []string
	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			issues = append(issues, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}
	if len(issues) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(issues, "; "))
	}
	return result, nil
}

func extractValue(t Threshold, r metrics.HostReport) (float64, error) {
	if t.Metric == "latency" {
		return extractLatency(t.Aggregate, r)
	}

	var count int
	switch t.Metric {
	case "success":
		count = r.Success
	case "failed":
		count = r.Failed
	case "errors":
		count = r.Errors
	case "other":
		count = r.Other
	default:
		return 0, fmt.Errorf("unknown metric: %s", t.Metric)
	}

	switch t.Aggregate {
	case "count":
		return float64(count), nil
	case "rate":
		if t.Metric == "success" {
			return r.SuccessRate(), nil
		}
		if r.Total == 0 {
			return 0, nil
		}
		return float64(count) / float64(r.Total), nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for %s", t.Aggregate, t.Metric)
	}
}

func extractLatency(aggregate string, r metrics.HostReport) (float64, error) {
	if r.Success == 0 {
		return 0, errNoLatency
	}
	switch aggregate {
	case "p50":
		return metrics.RoundMs(r.P50Latency), nil
	case "p90":
		return metrics.RoundMs(r.P90Latency), nil
	case "p99":
		return metrics.RoundMs(r.P99Latency), nil
	case "avg":
		return metrics.RoundMs(r.MeanLatency), nil
	case "min":
		v, _ := r.Min()
		return metrics.RoundMs(v), nil
	case "max":
		v, _ := r.Max()
		return metrics.RoundMs(v), nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for latency", aggregate)
	}
}

func compareValues(actual float64, operator string, expected float64) bool {
	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected
	case "==":
		return actual == expected
	default:
		return false
	}
}
