package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/torosent/hostbench/internal/metrics"
)

func TestProgressLine(t *testing.T) {
	collector := metrics.NewCollector()
	collector.SetHosts(3)
	collector.RequestDone("https://a.example.com", metrics.OK(200, 10*time.Millisecond))
	collector.RequestDone("https://a.example.com", metrics.OK(500, 10*time.Millisecond))
	collector.RequestDone("https://a.example.com", metrics.Failure(errors.New("dial tcp: connection refused")))
	collector.HostDone(metrics.HostReport{Host: "https://a.example.com"})
	collector.HostFailed("ftp://b", errors.New("invalid"))

	line := ProgressLine(collector.Stats())
	for _, want := range []string{"\rHosts: 2/3", "Requests: 3", "Success: 1", "Failed: 1", "Errors: 1", "Top Error:"} {
		if !strings.Contains(line, want) {
			t.Errorf("ProgressLine() = %q, missing %q", line, want)
		}
	}
}

func TestProgressReporterStartStop(t *testing.T) {
	collector := metrics.NewCollector()
	collector.SetHosts(1)
	collector.RequestDone("https://a.example.com", metrics.OK(200, time.Millisecond))

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 10*time.Millisecond, &buf)
	reporter.Start()
	reporter.Start()
	time.Sleep(50 * time.Millisecond)
	reporter.Stop()
	reporter.Stop()

	out := buf.String()
	if !strings.Contains(out, "Requests: 1") {
		t.Errorf("expected progress output, got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("final progress line should end with a newline")
	}
}

func TestProgressReporterStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewProgressReporter(metrics.NewCollector(), time.Second, &buf)
	reporter.Stop()
	if buf.Len() != 0 {
		t.Errorf("Stop() without Start() wrote %q", buf.String())
	}
}
