package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/hostbench/internal/config"
)

func TestLoadWithoutArgumentsShowsHelp(t *testing.T) {
	_, err := config.NewLoader().Load([]string{})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("Load() error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadHelpFlag(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--help"})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("Load() error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{"--hosts", "http://example.com"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Count != 1 {
		t.Errorf("Count = %d, want 1", cfg.Count)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Timeout)
	}
	if cfg.Parallel {
		t.Error("Parallel = true, want false without --parallel")
	}
	if cfg.Format != config.FormatText {
		t.Errorf("Format = %q, want text", cfg.Format)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	content := strings.Join([]string{
		"hosts:",
		"  - https://a.example.com",
		"  - https://b.example.com/health",
		"count: 10",
		"timeout: 2s",
		"parallel: 4",
		"format: yaml",
		"thresholds:",
		"  - \"latency:avg < 200\"",
		"log:",
		"  level: debug",
		"  format: json",
		"tracing:",
		"  endpoint: localhost:4318",
		"  protocol: http",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Hosts) != 2 || cfg.Hosts[1] != "https://b.example.com/health" {
		t.Errorf("Hosts = %v", cfg.Hosts)
	}
	if cfg.Count != 10 {
		t.Errorf("Count = %d, want 10", cfg.Count)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %s, want 2s", cfg.Timeout)
	}
	if !cfg.Parallel || cfg.Workers != 4 {
		t.Errorf("Parallel/Workers = %v/%d, want true/4", cfg.Parallel, cfg.Workers)
	}
	if cfg.Format != config.FormatYAML {
		t.Errorf("Format = %q, want yaml", cfg.Format)
	}
	if len(cfg.Thresholds) != 1 || cfg.Thresholds[0] != "latency:avg < 200" {
		t.Errorf("Thresholds = %q", cfg.Thresholds)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Tracing.Endpoint != "localhost:4318" || cfg.Tracing.Protocol != "http" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestLoadPrecedenceFileEnvFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.json")
	if err := os.WriteFile(path, []byte(`{"hosts": ["http://file.com"], "count": 2, "rate": 10, "timeout": "1s"}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("HOSTBENCH_COUNT", "3")
	t.Setenv("HOSTBENCH_RATE", "20")

	cfg, err := config.NewLoader().Load([]string{"--config", path, "--rate", "30"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Timeout != time.Second {
		t.Errorf("Timeout = %s, want 1s from file", cfg.Timeout)
	}
	if cfg.Count != 3 {
		t.Errorf("Count = %d, want 3 from environment", cfg.Count)
	}
	if cfg.Rate != 30 {
		t.Errorf("Rate = %d, want 30 from flag", cfg.Rate)
	}
}

func TestLoadBlankParallelStaysSequential(t *testing.T) {
	for name, value := range map[string]string{"empty string": `""`, "null": "null", "tilde": "~"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bench.yaml")
			content := "hosts: https://example.com\nparallel: " + value + "\n"
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			cfg, err := config.NewLoader().Load([]string{"--config", path})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Parallel || cfg.Workers != 0 {
				t.Errorf("Parallel/Workers = %v/%d, want false/0", cfg.Parallel, cfg.Workers)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoadHostsFromEnvironment(t *testing.T) {
	t.Setenv("HOSTBENCH_HOSTS", "http://a.com, http://b.com")

	cfg, err := config.NewLoader().Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Hosts) != 2 || cfg.Hosts[1] != "http://b.com" {
		t.Errorf("Hosts = %q", cfg.Hosts)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.env")
	if err := os.WriteFile(path, []byte("HOSTBENCH_COUNT=7\nHOSTBENCH_PARALLEL=2\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"-H", "http://a.com", "--env-file", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Count != 7 {
		t.Errorf("Count = %d, want 7", cfg.Count)
	}
	if !cfg.Parallel || cfg.Workers != 2 {
		t.Errorf("Parallel/Workers = %v/%d, want true/2", cfg.Parallel, cfg.Workers)
	}
	if cfg.EnvFile != path {
		t.Errorf("EnvFile = %q, want %q", cfg.EnvFile, path)
	}
}

func TestLoadUnknownFlag(t *testing.T) {
	if _, err := config.NewLoader().Load([]string{"--bogus"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Defaults()
		cfg.Hosts = []string{"http://a.com"}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"no hosts", func(c *config.Config) { c.Hosts = nil }, "hosts, file or har is required"},
		{"hosts and file", func(c *config.Config) { c.HostsFile = "hosts.txt" }, "mutually exclusive"},
		{"hosts and har", func(c *config.Config) { c.HARFile = "capture.har" }, "mutually exclusive"},
		{"zero count", func(c *config.Config) { c.Count = 0 }, "count must be >= 1"},
		{"zero timeout", func(c *config.Config) { c.Timeout = 0 }, "timeout must be > 0"},
		{"zero workers", func(c *config.Config) { c.Parallel = true; c.Workers = 0 }, "parallel must be >= 1"},
		{"negative rate", func(c *config.Config) { c.Rate = -1 }, "rate must be >= 0"},
		{"bad format", func(c *config.Config) { c.Format = "xml" }, "format \"xml\""},
		{"html to stdout", func(c *config.Config) { c.Format = config.FormatHTML }, "html format requires output"},
		{"dashboard and progress", func(c *config.Config) { c.Dashboard = true; c.Progress = true }, "dashboard and progress"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "log: level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log: format"},
		{"bad protocol", func(c *config.Config) { c.Tracing.Protocol = "udp" }, "tracing: protocol"},
		{"bad sample rate", func(c *config.Config) { c.Tracing.SampleRate = 1.5 }, "tracing: sample_rate"},
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("baseline Validate() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil")
			}
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.want)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := config.Defaults()
	cfg.Parallel = true
	cfg.Workers = 600
	cfg.FailFast = true

	warnings := cfg.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("Warnings() = %q, want 2 entries", warnings)
	}
}

func TestTracingConfigPropagation(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	var tc config.TracingConfig
	if tc.Enabled() || tc.ShouldPropagate() {
		t.Error("empty tracing config should be disabled")
	}

	tc.Endpoint = "localhost:4317"
	if !tc.Enabled() || !tc.ShouldPropagate() {
		t.Error("endpoint should enable tracing and propagation")
	}

	off := false
	tc.Propagate = &off
	if tc.ShouldPropagate() {
		t.Error("explicit propagate=false should win")
	}
}
