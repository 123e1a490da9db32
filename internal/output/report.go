package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/hostbench/internal/config"
	"github.com/torosent/hostbench/internal/metrics"
	"github.com/torosent/hostbench/internal/runner"
	"github.com/torosent/hostbench/internal/threshold"
)

const separator = "------------------------------------"

// Document is the machine-readable form of a batch used by the JSON, YAML
// and HTML renderers.
type Document struct {
	BatchID    string            `json:"batch_id" yaml:"batch_id"`
	Mode       string            `json:"mode" yaml:"mode"`
	StartedAt  time.Time         `json:"started_at" yaml:"started_at"`
	DurationMs float64           `json:"duration_ms" yaml:"duration_ms"`
	Hosts      []metrics.Summary `json:"hosts" yaml:"hosts"`
	Failures   []FailureSummary  `json:"failures,omitempty" yaml:"failures,omitempty"`
	Thresholds *ThresholdSummary `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// FailureSummary names a host that produced no report and why.
type FailureSummary struct {
	Host  string `json:"host" yaml:"host"`
	Error string `json:"error" yaml:"error"`
}

// ThresholdSummary aggregates threshold results.
type ThresholdSummary struct {
	Total   int                   `json:"total" yaml:"total"`
	Passed  int                   `json:"passed" yaml:"passed"`
	Failed  int                   `json:"failed" yaml:"failed"`
	Results []ThresholdResultJSON `json:"results" yaml:"results"`
}

// ThresholdResultJSON is one threshold outcome for one host.
type ThresholdResultJSON struct {
	Host      string  `json:"host" yaml:"host"`
	Threshold string  `json:"threshold" yaml:"threshold"`
	Metric    string  `json:"metric" yaml:"metric"`
	Aggregate string  `json:"aggregate" yaml:"aggregate"`
	Operator  string  `json:"operator" yaml:"operator"`
	Expected  float64 `json:"expected" yaml:"expected"`
	Actual    float64 `json:"actual" yaml:"actual"`
	Pass      bool    `json:"pass" yaml:"pass"`
}

// NewDocument converts a batch and its threshold results.
func NewDocument(batch runner.Batch, results []threshold.Result) Document {
	doc := Document{
		BatchID:    batch.ID.String(),
		Mode:       string(batch.Mode),
		StartedAt:  batch.Started.UTC(),
		DurationMs: metrics.RoundMs(batch.Duration),
		Hosts:      make([]metrics.Summary, 0, len(batch.Reports)),
	}
	for _, r := range batch.Reports {
		doc.Hosts = append(doc.Hosts, r.Summary())
	}
	for _, f := range batch.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		doc.Failures = append(doc.Failures, FailureSummary{Host: f.Host, Error: msg})
	}
	doc.Thresholds = summarizeThresholds(results)
	return doc
}

func summarizeThresholds(results []threshold.Result) *ThresholdSummary {
	if len(results) == 0 {
		return nil
	}
	s := &ThresholdSummary{
		Total:   len(results),
		Results: make([]ThresholdResultJSON, len(results)),
	}
	for i, tr := range results {
		s.Results[i] = ThresholdResultJSON{
			Host:      tr.Host,
			Threshold: tr.Threshold.Raw,
			Metric:    tr.Threshold.Metric,
			Aggregate: tr.Threshold.Aggregate,
			Operator:  tr.Threshold.Operator,
			Expected:  tr.Threshold.Value,
			Actual:    tr.Actual,
			Pass:      tr.Pass,
		}
		if tr.Pass {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// PrintReport writes the classic text layout, one block per host:
//
//	------------------------------------
//	host    = https://example.com
//	success = 3
//	...
//
// Latencies are milliseconds with one decimal; absent min/max print n/a and
// the other line appears only when non-zero.
func PrintReport(w io.Writer, reports []metrics.HostReport) error {
	var buf bytes.Buffer
	for _, r := range reports {
		writeHostBlock(&buf, r)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeHostBlock(buf *bytes.Buffer, r metrics.HostReport) {
	fmt.Fprintf(buf, "\n%s\n", separator)
	fmt.Fprintf(buf, "host    = %s\n", r.Host)
	fmt.Fprintf(buf, "success = %d\n", r.Success)
	fmt.Fprintf(buf, "failed  = %d\n", r.Failed)
	fmt.Fprintf(buf, "errors  = %d\n", r.Errors)
	if r.Other > 0 {
		fmt.Fprintf(buf, "other   = %d\n", r.Other)
	}
	slowest, ok := r.Max()
	fmt.Fprintf(buf, "max     = %s\n", formatLatency(slowest, ok))
	fastest, ok := r.Min()
	fmt.Fprintf(buf, "min     = %s\n", formatLatency(fastest, ok))
	fmt.Fprintf(buf, "avg     = %s\n", formatLatency(r.MeanLatency, true))
}

func formatLatency(d time.Duration, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.1f ms", metrics.RoundMs(d))
}

// PrintThresholdResults writes a pass/fail line per result.
func PrintThresholdResults(w io.Writer, results []threshold.Result) error {
	if len(results) == 0 {
		return nil
	}
	var buf bytes.Buffer
	passed := 0
	for _, r := range results {
		if r.Pass {
			passed++
		}
	}
	fmt.Fprintf(&buf, "\nThresholds: %d/%d passed\n", passed, len(results))
	for _, r := range results {
		fmt.Fprintf(&buf, "  %s\n", r.Message)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// PrintJSONReport writes doc as indented JSON.
func PrintJSONReport(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// PrintYAMLReport writes doc as YAML.
func PrintYAMLReport(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// Render writes batch in the requested format. Text output carries threshold
// results after the host blocks; structured formats embed them.
func Render(w io.Writer, format config.OutputFormat, batch runner.Batch, results []threshold.Result) error {
	switch config.OutputFormat(strings.ToLower(string(format))) {
	case config.FormatText, "":
		if err := PrintReport(w, batch.Reports); err != nil {
			return err
		}
		return PrintThresholdResults(w, results)
	case config.FormatJSON:
		return PrintJSONReport(w, NewDocument(batch, results))
	case config.FormatYAML:
		return PrintYAMLReport(w, NewDocument(batch, results))
	case config.FormatHTML:
		return GenerateHTMLReport(w, NewDocument(batch, results))
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
