package metrics

import (
	"sort"
	"sync"
	"time"
)

// HostProgress is the live state of one host while its requests run.
type HostProgress struct {
	Host     string
	Done     int
	Success  int
	Failed   int
	Errors   int
	Other    int
	Finished bool
	Invalid  bool
}

// LiveStats is a point-in-time view of a running batch.
type LiveStats struct {
	HostsTotal     int
	HostsDone      int
	HostsFailed    int
	Requests       int64
	Success        int64
	Failed         int64
	Errors         int64
	Other          int64
	MinLatency     time.Duration
	MaxLatency     time.Duration
	MeanLatency    time.Duration
	Elapsed        time.Duration
	RequestsPerSec float64
	ErrorKinds     map[string]int
	StatusCodes    map[int]int
	Hosts          []HostProgress
}

// Collector tracks live progress of a batch in a thread-safe manner. It
// satisfies the runner's Observer interface and feeds the progress line and
// the dashboard; final numbers always come from HostReport.
type Collector struct {
	mu          sync.Mutex
	hostsTotal  int
	hostsDone   int
	hostsFailed int
	requests    int64
	success     int64
	failed      int64
	errors      int64
	other       int64
	minLatency  time.Duration
	maxLatency  time.Duration
	sumLatency  time.Duration
	errorKinds  map[string]int
	statusCodes map[int]int
	hosts       map[string]*HostProgress
	order       []string
	start       time.Time
}

func NewCollector() *Collector {
	return &Collector{
		errorKinds:  make(map[string]int),
		statusCodes: make(map[int]int),
		hosts:       make(map[string]*HostProgress),
		start:       time.Now(),
	}
}

// Start resets the clock used for the requests-per-second rate.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// SetHosts records how many hosts the batch will test.
func (c *Collector) SetHosts(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hostsTotal = n
}

// HostStarted registers a host before its first request.
func (c *Collector) HostStarted(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress(host)
}

// RequestDone records a single outcome for host.
func (c *Collector) RequestDone(host string, o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.progress(host)
	p.Done++
	c.requests++
	if o.Kind == OutcomeOK {
		c.statusCodes[o.StatusCode]++
	}

	switch Classify(o) {
	case ClassSuccess:
		p.Success++
		c.success++
		c.sumLatency += o.Elapsed
		if c.minLatency == 0 || o.Elapsed < c.minLatency {
			c.minLatency = o.Elapsed
		}
		if o.Elapsed > c.maxLatency {
			c.maxLatency = o.Elapsed
		}
	case ClassFailed:
		p.Failed++
		c.failed++
	case ClassError:
		p.Errors++
		c.errors++
		c.errorKinds[ErrorKind(o.Err)]++
	default:
		p.Other++
		c.other++
	}
}

// HostDone marks a host's report as complete.
func (c *Collector) HostDone(report HostReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.progress(report.Host)
	p.Finished = true
	c.hostsDone++
}

// HostFailed marks a host that produced no report.
func (c *Collector) HostFailed(host string, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.progress(host)
	p.Finished = true
	p.Invalid = true
	c.hostsFailed++
}

// progress must be called with c.mu held.
func (c *Collector) progress(host string) *HostProgress {
	if p, ok := c.hosts[host]; ok {
		return p
	}
	p := &HostProgress{Host: host}
	c.hosts[host] = p
	c.order = append(c.order, host)
	return p
}

// Stats computes a snapshot of the current state.
func (c *Collector) Stats() LiveStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.start)
	stats := LiveStats{
		HostsTotal:  c.hostsTotal,
		HostsDone:   c.hostsDone,
		HostsFailed: c.hostsFailed,
		Requests:    c.requests,
		Success:     c.success,
		Failed:      c.failed,
		Errors:      c.errors,
		Other:       c.other,
		MinLatency:  c.minLatency,
		MaxLatency:  c.maxLatency,
		Elapsed:     elapsed,
	}
	if c.success > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / c.success)
	}
	if elapsed > 0 && c.requests > 0 {
		stats.RequestsPerSec = float64(c.requests) / elapsed.Seconds()
	}
	if len(c.errorKinds) > 0 {
		stats.ErrorKinds = make(map[string]int, len(c.errorKinds))
		for k, v := range c.errorKinds {
			stats.ErrorKinds[k] = v
		}
	}
	if len(c.statusCodes) > 0 {
		stats.StatusCodes = make(map[int]int, len(c.statusCodes))
		for k, v := range c.statusCodes {
			stats.StatusCodes[k] = v
		}
	}
	stats.Hosts = make([]HostProgress, 0, len(c.order))
	for _, host := range c.order {
		stats.Hosts = append(stats.Hosts, *c.hosts[host])
	}
	return stats
}

// TopErrorKinds returns error kinds sorted by descending count, then by name.
func (s LiveStats) TopErrorKinds() []string {
	kinds := make([]string, 0, len(s.ErrorKinds))
	for k := range s.ErrorKinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if s.ErrorKinds[kinds[i]] == s.ErrorKinds[kinds[j]] {
			return kinds[i] < kinds[j]
		}
		return s.ErrorKinds[kinds[i]] > s.ErrorKinds[kinds[j]]
	})
	return kinds
}
