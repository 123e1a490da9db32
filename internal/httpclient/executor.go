package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/hostbench/internal/metrics"
	"github.com/torosent/hostbench/internal/tracing"
)

// Version is the hostbench release reported in the default User-Agent.
const Version = "0.1.0"

// DefaultUserAgent is sent when no WithUserAgent option is given.
const DefaultUserAgent = "hostbench/" + Version

const (
	headersPending int32 = iota
	headersArrived
	headersTimedOut
)

var (
	// ErrInvalidArgument reports a request count below one.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTimeout marks an attempt that saw no response headers in time.
	ErrTimeout = errors.New("timeout awaiting response headers")
)

// Doer performs a single GET and reports its outcome. Transport failures are
// returned as Error outcomes, never as Go errors.
type Doer interface {
	Execute(ctx context.Context, url string, timeout time.Duration) metrics.Outcome
}

// Executor issues GET requests through a shared *http.Client. It holds no
// per-call state and is safe for concurrent use.
type Executor struct {
	client    *http.Client
	tracer    trace.Tracer
	propagate bool
	userAgent string
}

// Option configures an Executor.
type Option func(*Executor)

// WithTracer records a client span per request and, when propagate is set,
// injects W3C trace headers.
func WithTracer(tracer trace.Tracer, propagate bool) Option {
	return func(e *Executor) {
		e.tracer = tracer
		e.propagate = propagate
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(e *Executor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// NewExecutor wraps client; a nil client gets NewClient(0).
func NewExecutor(client *http.Client, opts ...Option) *Executor {
	if client == nil {
		client = NewClient(0)
	}
	e := &Executor{
		client:    client,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute sends exactly one GET to url. If no response headers arrive within
// timeout the request is aborted and an Error outcome is returned. Elapsed
// covers send through the last body byte.
func (e *Executor) Execute(ctx context.Context, url string, timeout time.Duration) metrics.Outcome {
	ctx, span := tracing.StartRequestSpan(ctx, e.tracer, url)

	outcome := e.do(ctx, url, timeout)

	var attrs []attribute.KeyValue
	if outcome.Kind == metrics.OutcomeOK {
		attrs = append(attrs, tracing.AttrStatus.Int(outcome.StatusCode))
	}
	tracing.EndSpan(span, outcome.Err, attrs...)
	return outcome
}

func (e *Executor) do(ctx context.Context, url string, timeout time.Duration) metrics.Outcome {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return metrics.Failure(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", e.userAgent)
	if e.propagate {
		tracing.InjectHTTPHeaders(reqCtx, req.Header)
	}

	// The timer only guards the wait for headers. Whichever of the timer and
	// Do claims the state first decides the attempt: once headers are
	// claimed the timer can no longer cancel the body read.
	var state atomic.Int32
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			if state.CompareAndSwap(headersPending, headersTimedOut) {
				cancel()
			}
		})
		defer timer.Stop()
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	inTime := state.CompareAndSwap(headersPending, headersArrived)
	if err != nil {
		if !inTime || isTimeout(err) {
			return metrics.Failure(timeoutError(timeout))
		}
		return metrics.Failure(err)
	}
	defer resp.Body.Close()

	if !inTime {
		return metrics.Failure(timeoutError(timeout))
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return metrics.Failure(fmt.Errorf("read body: %w", err))
	}
	return metrics.OK(resp.StatusCode, time.Since(start))
}

// ExecuteN performs count sequential attempts against url in order.
func (e *Executor) ExecuteN(ctx context.Context, url string, timeout time.Duration, count int) ([]metrics.Outcome, error) {
	return ExecuteN(ctx, e, url, timeout, count)
}

// ExecuteN performs count sequential attempts with d. Once ctx is done the
// remaining attempts are recorded as Error outcomes without being sent, so
// len(result) == count always holds.
func ExecuteN(ctx context.Context, d Doer, url string, timeout time.Duration, count int) ([]metrics.Outcome, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be >= 1, got %d", ErrInvalidArgument, count)
	}

	outcomes := make([]metrics.Outcome, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, metrics.Failure(err))
			continue
		}
		outcomes = append(outcomes, d.Execute(ctx, url, timeout))
	}
	return outcomes, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// timeoutError drops the cause chain: the timer cancels the request context,
// so the transport reports context.Canceled for what is really a timeout.
func timeoutError(timeout time.Duration) error {
	return fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, context.DeadlineExceeded)
}
