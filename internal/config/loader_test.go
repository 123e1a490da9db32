package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestAsInt(t *testing.T) {
	tests := []struct {
		input any
		want  int
	}{
		{123, 123},
		{"456", 456},
		{" 7 ", 7},
		{int64(789), 789},
		{float64(10.0), 10},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asInt(tt.input)
		if err != nil {
			t.Errorf("asInt(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		input any
		want  bool
	}{
		{true, true},
		{"true", true},
		{"1", true},
		{false, false},
		{"0", false},
		{nil, false},
	}

	for _, tt := range tests {
		got, err := asBool(tt.input)
		if err != nil {
			t.Errorf("asBool(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asBool(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAsDuration(t *testing.T) {
	tests := []struct {
		input any
		want  time.Duration
	}{
		{"250ms", 250 * time.Millisecond},
		{"3", 3 * time.Second},
		{2, 2 * time.Second},
		{1.5, 1500 * time.Millisecond},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asDuration(tt.input)
		if err != nil {
			t.Errorf("asDuration(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asDuration(%v) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := asDuration("soon"); err == nil {
		t.Error("asDuration(\"soon\") expected error")
	}
}

func TestAsStringSliceSplitsCommaString(t *testing.T) {
	got, err := asStringSlice(" http://a.com ,, http://b.org ")
	if err != nil {
		t.Fatalf("asStringSlice() error = %v", err)
	}
	if len(got) != 2 || got[0] != "http://a.com" || got[1] != "http://b.org" {
		t.Errorf("asStringSlice() = %q, want [http://a.com http://b.org]", got)
	}
}

func TestAsStringSliceFromDecodedList(t *testing.T) {
	got, err := asStringSlice([]any{"https://a.com", " ", "https://b.org"})
	if err != nil {
		t.Fatalf("asStringSlice() error = %v", err)
	}
	if len(got) != 2 || got[1] != "https://b.org" {
		t.Errorf("asStringSlice() = %q", got)
	}
	if got, err := asStringSlice(nil); err != nil || got != nil {
		t.Errorf("asStringSlice(nil) = %q, %v", got, err)
	}
}

func TestApplyConfigSettingsBlankParallel(t *testing.T) {
	for _, raw := range []any{nil, "", "   "} {
		cfg := Defaults()
		if err := applyConfigSettings(&cfg, map[string]any{"parallel": raw}); err != nil {
			t.Fatalf("applyConfigSettings(parallel=%q) error = %v", raw, err)
		}
		if cfg.Parallel || cfg.Workers != 0 {
			t.Errorf("parallel=%q: Parallel/Workers = %v/%d, want false/0", raw, cfg.Parallel, cfg.Workers)
		}
	}

	cfg := Defaults()
	if err := applyConfigSettings(&cfg, map[string]any{"parallel": "3"}); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}
	if !cfg.Parallel || cfg.Workers != 3 {
		t.Errorf("Parallel/Workers = %v/%d, want true/3", cfg.Parallel, cfg.Workers)
	}
}

func TestLookupSettingYAMLMap(t *testing.T) {
	settings := map[string]any{
		"Tracing": map[any]any{"Sample_Rate": 0.5},
	}
	val, ok := lookupSetting(settings, "tracing.sample_rate")
	if !ok {
		t.Fatal("lookupSetting(tracing.sample_rate) not found")
	}
	if rate, err := asFloat64(val); err != nil || rate != 0.5 {
		t.Errorf("sample rate = %v, %v; want 0.5", rate, err)
	}
}

func TestLookupSettingNested(t *testing.T) {
	settings := map[string]any{
		"log": map[string]any{"Level": "debug"},
	}
	val, ok := lookupSetting(settings, "log.level")
	if !ok || val != "debug" {
		t.Errorf("lookupSetting(log.level) = %v, %v; want debug, true", val, ok)
	}
	if _, ok := lookupSetting(settings, "log.format"); ok {
		t.Error("lookupSetting(log.format) found a value, want none")
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := Defaults()
	settings := map[string]any{
		"hosts":    []any{"http://a.com", "https://b.org/x"},
		"count":    3,
		"timeout":  "750ms",
		"parallel": 4,
		"format":   "json",
		"log": map[string]any{
			"level": "debug",
		},
		"tracing": map[string]any{
			"endpoint":  "localhost:4317",
			"propagate": false,
		},
	}

	if err := applyConfigSettings(&cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}

	if len(cfg.Hosts) != 2 {
		t.Errorf("Hosts = %v, want 2 entries", cfg.Hosts)
	}
	if cfg.Count != 3 {
		t.Errorf("Count = %d, want 3", cfg.Count)
	}
	if cfg.Timeout != 750*time.Millisecond {
		t.Errorf("Timeout = %s, want 750ms", cfg.Timeout)
	}
	if !cfg.Parallel || cfg.Workers != 4 {
		t.Errorf("Parallel/Workers = %v/%d, want true/4", cfg.Parallel, cfg.Workers)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" {
		t.Errorf("Tracing.Endpoint = %q", cfg.Tracing.Endpoint)
	}
	if cfg.Tracing.Propagate == nil || *cfg.Tracing.Propagate {
		t.Errorf("Tracing.Propagate = %v, want explicit false", cfg.Tracing.Propagate)
	}
}

func TestApplyConfigSettingsReportsKey(t *testing.T) {
	cfg := Defaults()
	err := applyConfigSettings(&cfg, map[string]any{"count": "many"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); len(got) < 6 || got[:6] != "count:" {
		t.Errorf("error = %q, want prefix count:", got)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := Defaults()
	cfg.HostsFile = "hosts.txt"
	cfg.HARFile = "capture.har"

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)

	args := []string{
		"-H", "http://a.com,http://b.com",
		"-C", "5",
		"-T", "2s",
		"-P", "3",
		"--log-level=WARN",
		"--tracing-propagate",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := applyFlagOverrides(&cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if len(cfg.Hosts) != 2 {
		t.Errorf("Hosts = %v, want 2", cfg.Hosts)
	}
	if cfg.HostsFile != "" {
		t.Errorf("HostsFile = %q, want cleared by --hosts", cfg.HostsFile)
	}
	if cfg.HARFile != "" {
		t.Errorf("HARFile = %q, want cleared by --hosts", cfg.HARFile)
	}
	if cfg.Count != 5 {
		t.Errorf("Count = %d, want 5", cfg.Count)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %s, want 2s", cfg.Timeout)
	}
	if !cfg.Parallel || cfg.Workers != 3 {
		t.Errorf("Parallel/Workers = %v/%d, want true/3", cfg.Parallel, cfg.Workers)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Tracing.Propagate == nil || !*cfg.Tracing.Propagate {
		t.Error("Tracing.Propagate should be explicitly true")
	}
}

func TestApplyEnvFileRespectsRealEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.env")
	content := "HOSTBENCH_COUNT=9\nHOSTBENCH_LOG_LEVEL=debug\nUNRELATED=1\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("HOSTBENCH_COUNT", "4")

	v := viper.New()
	for _, key := range settingKeys {
		if err := v.BindEnv(key, envName(key)); err != nil {
			t.Fatalf("BindEnv() error = %v", err)
		}
	}
	used, err := applyEnvFile(v, path)
	if err != nil {
		t.Fatalf("applyEnvFile() error = %v", err)
	}
	if used != path {
		t.Errorf("used = %q, want %q", used, path)
	}
	if got := v.GetInt("count"); got != 4 {
		t.Errorf("count = %d, want 4 from real environment", got)
	}
	if got := v.GetString("log.level"); got != "debug" {
		t.Errorf("log.level = %q, want debug from env file", got)
	}
}

func TestApplyEnvFileMissingExplicitPath(t *testing.T) {
	_, err := applyEnvFile(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatal("expected error for missing explicit env file")
	}
}

func TestEnvName(t *testing.T) {
	if got := envName("tracing.sample_rate"); got != "HOSTBENCH_TRACING_SAMPLE_RATE" {
		t.Errorf("envName() = %q", got)
	}
}

func TestApplyFlagOverridesHARReplacesHosts(t *testing.T) {
	cfg := Defaults()
	cfg.Hosts = []string{"http://a.com"}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse([]string{"--har", " capture.har "}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := applyFlagOverrides(&cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}
	if cfg.Hosts != nil || cfg.HARFile != "capture.har" {
		t.Errorf("Hosts = %v, HARFile = %q; want nil, capture.har", cfg.Hosts, cfg.HARFile)
	}
}
