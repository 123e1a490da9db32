package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// OutputFormat selects the report renderer.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatHTML OutputFormat = "html"
)

const (
	DefaultCount   = 1
	DefaultTimeout = 5 * time.Second
)

type Config struct {
	Hosts      []string      `mapstructure:"hosts"`
	HostsFile  string        `mapstructure:"file"`
	HARFile    string        `mapstructure:"har"`
	Count      int           `mapstructure:"count"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Parallel   bool          `mapstructure:"-"` // true when a worker count was given
	Workers    int           `mapstructure:"parallel"`
	Rate       int           `mapstructure:"rate"`
	FailFast   bool          `mapstructure:"fail_fast"`
	Output     string        `mapstructure:"output"`
	Format     OutputFormat  `mapstructure:"format"`
	Progress   bool          `mapstructure:"progress"`
	Dashboard  bool          `mapstructure:"dashboard"`
	Thresholds []string      `mapstructure:"thresholds"`
	PromFile   string        `mapstructure:"prom_file"`
	ConfigFile string        `mapstructure:"-"`
	EnvFile    string        `mapstructure:"-"`
	Log        LogConfig     `mapstructure:"log"`
	Tracing    TracingConfig `mapstructure:"tracing"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`  // logrus level name
	Format     string `mapstructure:"format"` // "text" or "json"
	File       string `mapstructure:"file"`   // empty means stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   *bool   `mapstructure:"propagate"` // nil follows Enabled()
}

// Enabled reports whether an OTLP endpoint is configured, directly or via
// OTEL_EXPORTER_OTLP_ENDPOINT.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into requests.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	sources := 0
	if len(c.Hosts) > 0 {
		sources++
	}
	if strings.TrimSpace(c.HostsFile) != "" {
		sources++
	}
	if strings.TrimSpace(c.HARFile) != "" {
		sources++
	}
	switch {
	case sources > 1:
		issues = append(issues, "hosts, file and har are mutually exclusive")
	case sources == 0:
		issues = append(issues, "hosts, file or har is required (use --help for usage information)")
	}

	if c.Count < 1 {
		issues = append(issues, "count must be >= 1")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}
	if c.Parallel && c.Workers < 1 {
		issues = append(issues, "parallel must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	case FormatHTML:
		if strings.TrimSpace(c.Output) == "" {
			issues = append(issues, "html format requires output")
		}
	default:
		issues = append(issues, fmt.Sprintf("format %q is not supported (text, json, yaml, html)", c.Format))
	}

	if c.Dashboard && c.Progress {
		issues = append(issues, "dashboard and progress are mutually exclusive")
	}

	issues = append(issues, validateLogConfig(c.Log)...)
	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// Warnings returns advisory messages for settings that are valid but risky.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Workers > 500 {
		warnings = append(warnings, fmt.Sprintf("high worker count configured (%d). Ensure you have authorization to test the target hosts.", c.Workers))
	}
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("high rate limit configured (%d RPS). Ensure you have authorization to test the target hosts.", c.Rate))
	}
	if c.FailFast && c.Parallel {
		warnings = append(warnings, "fail-fast only applies to sequential runs; parallel runs always isolate host failures")
	}
	return warnings
}

func validateLogConfig(log LogConfig) []string {
	var issues []string
	if _, err := logrus.ParseLevel(log.Level); err != nil {
		issues = append(issues, fmt.Sprintf("log: level %q is not supported", log.Level))
	}
	switch strings.ToLower(log.Format) {
	case "text", "json":
	default:
		issues = append(issues, fmt.Sprintf("log: format %q is not supported (text, json)", log.Format))
	}
	if log.MaxSizeMB < 0 || log.MaxBackups < 0 || log.MaxAgeDays < 0 {
		issues = append(issues, "log: rotation settings must be >= 0")
	}
	return issues
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
