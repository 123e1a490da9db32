package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/torosent/hostbench/internal/metrics"
)

// ProgressReporter repaints one status line on w every interval until
// stopped. It is the non-interactive counterpart of the dashboard.
type ProgressReporter struct {
	collector *metrics.Collector
	interval  time.Duration
	w         io.Writer

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

func NewProgressReporter(collector *metrics.Collector, interval time.Duration, w io.Writer) *ProgressReporter {
	if w == nil {
		w = io.Discard
	}
	return &ProgressReporter{collector: collector, interval: interval, w: w}
}

// Start launches the repaint loop. Calling it on a running reporter is a no-op.
func (p *ProgressReporter) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	p.stop = make(chan struct{})
	p.stopped = make(chan struct{})
	go p.loop(p.stop, p.stopped)
}

// Stop ends the loop and leaves the final counters on their own line.
// It does nothing unless the reporter is running.
func (p *ProgressReporter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		return
	}
	close(p.stop)
	<-p.stopped
	p.stop, p.stopped = nil, nil
	fmt.Fprintln(p.w, ProgressLine(p.collector.Stats()))
}

func (p *ProgressReporter) loop(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	tick := time.NewTicker(p.interval)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			io.WriteString(p.w, ProgressLine(p.collector.Stats()))
		}
	}
}

// ProgressLine renders stats as "\rHosts: done/total | ...", naming the most
// frequent error kind when there is one.
func ProgressLine(stats metrics.LiveStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\rHosts: %d/%d", stats.HostsDone+stats.HostsFailed, stats.HostsTotal)
	fmt.Fprintf(&b, " | Requests: %d | Success: %d | Failed: %d | Errors: %d",
		stats.Requests, stats.Success, stats.Failed, stats.Errors)
	fmt.Fprintf(&b, " | RPS: %.1f", stats.RequestsPerSec)
	if top := stats.TopErrorKinds(); len(top) > 0 {
		fmt.Fprintf(&b, " | Top Error: %s (%d)", top[0], stats.ErrorKinds[top[0]])
	}
	return b.String()
}
