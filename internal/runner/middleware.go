package runner

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/torosent/hostbench/internal/metrics"
)

// rateLimitedExecutor waits for a limiter token before every attempt.
type rateLimitedExecutor struct {
	inner   Executor
	limiter *rate.Limiter
}

// WithRateLimit paces attempts through limiter. A nil limiter returns exec
// unchanged. A canceled wait becomes an Error outcome.
func WithRateLimit(exec Executor, limiter *rate.Limiter) Executor {
	if limiter == nil {
		return exec
	}
	return &rateLimitedExecutor{inner: exec, limiter: limiter}
}

func (r *rateLimitedExecutor) Execute(ctx context.Context, url string, timeout time.Duration) metrics.Outcome {
	if err := r.limiter.Wait(ctx); err != nil {
		return metrics.Failure(err)
	}
	return r.inner.Execute(ctx, url, timeout)
}

// hostExecutor is bound to one host for the duration of its attempts. It
// numbers attempts, logs transport failures and feeds the Observer. Attempts
// within a host are sequential so attempt needs no synchronization.
type hostExecutor struct {
	inner    Executor
	host     string
	logger   logrus.FieldLogger
	observer Observer
	attempt  int
}

func (h *hostExecutor) Execute(ctx context.Context, url string, timeout time.Duration) metrics.Outcome {
	h.attempt++
	o := h.inner.Execute(ctx, url, timeout)
	if o.Kind == metrics.OutcomeError {
		h.logger.WithFields(logrus.Fields{
			"host":    h.host,
			"attempt": h.attempt,
			"kind":    metrics.ErrorKind(o.Err),
		}).WithError(o.Err).Debug("request error")
	}
	h.observer.RequestDone(h.host, o)
	return o
}
