package runner

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/torosent/hostbench/internal/httpclient"
	"github.com/torosent/hostbench/internal/metrics"
	"github.com/torosent/hostbench/internal/validator"
)

// DefaultTimeout applies when Options.Timeout is not positive.
const DefaultTimeout = 5 * time.Second

// Validator decides whether a host string may be requested.
type Validator interface {
	Validate(host string) bool
}

// Executor performs one GET. Transport failures are reported as Error
// outcomes. *httpclient.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, url string, timeout time.Duration) metrics.Outcome
}

// Observer receives live progress callbacks. Calls may arrive concurrently
// from parallel workers. *metrics.Collector satisfies it.
type Observer interface {
	HostStarted(host string)
	RequestDone(host string, o metrics.Outcome)
	HostDone(report metrics.HostReport)
	HostFailed(host string, err error)
}

// Options configure the Runner.
type Options struct {
	Executor       Executor                    // defaults to an httpclient.Executor
	Validator      Validator                   // defaults to validator.URLValidator
	Count          int                         // requests per host, must be >= 1
	Timeout        time.Duration               // per-request header timeout
	Parallel       bool                        // Run dispatches to RunParallel
	Workers        int                         // parallel worker count, must be >= 1 in parallel mode
	FailFast       bool                        // sequential only: abort on the first invalid host
	RatePerSecond  int                         // global request pacing (0 means unlimited)
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
	Logger         logrus.FieldLogger
	Tracer         trace.Tracer
	Observer       Observer
}

func (o *Options) normalize() {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.Validator == nil {
		o.Validator = validator.URLValidator{}
	}
	if o.Executor == nil {
		o.Executor = httpclient.NewExecutor(httpclient.NewClient(o.Timeout))
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

type nopObserver struct{}

func (nopObserver) HostStarted(string)                  {}
func (nopObserver) RequestDone(string, metrics.Outcome) {}
func (nopObserver) HostDone(metrics.HostReport)         {}
func (nopObserver) HostFailed(string, error)            {}
