package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/hostbench/internal/httpclient"
	"github.com/torosent/hostbench/internal/metrics"
	"github.com/torosent/hostbench/internal/tracing"
)

// Mode names how a batch dispatched its hosts.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// HostFailure records a host that produced no report.
type HostFailure struct {
	Host string
	Err  error
}

// Batch is the result of one run over a host list. Reports holds one entry
// per host that passed validation; sequential batches keep input order,
// parallel batches keep completion order.
type Batch struct {
	ID       ulid.ULID
	Mode     Mode
	Reports  []metrics.HostReport
	Failures []HostFailure
	Started  time.Time
	Duration time.Duration
}

// Runner validates, exercises and aggregates hosts.
type Runner struct {
	opt  Options
	exec Executor
}

func New(opt Options) *Runner {
	opt.normalize()
	exec := opt.Executor
	if opt.RatePerSecond > 0 {
		exec = WithRateLimit(exec, opt.LimiterFactory(opt.RatePerSecond))
	}
	return &Runner{opt: opt, exec: exec}
}

// Run uses RunParallel when Options.Parallel is set, RunSequential otherwise.
func (r *Runner) Run(ctx context.Context, hosts []string) (Batch, error) {
	if r.opt.Parallel {
		return r.RunParallel(ctx, hosts)
	}
	return r.RunSequential(ctx, hosts)
}

// RunHost tests a single host: validate, issue Count GETs, aggregate.
func (r *Runner) RunHost(ctx context.Context, host string) (metrics.HostReport, error) {
	if err := r.checkCount(); err != nil {
		return metrics.HostReport{}, err
	}
	return r.runHost(ctx, host)
}

// RunSequential tests hosts one after another in input order. An invalid
// host is recorded in Failures and skipped unless FailFast is set, in which
// case the batch stops, carries no reports and the error wraps
// ErrBatchAborted.
func (r *Runner) RunSequential(ctx context.Context, hosts []string) (Batch, error) {
	if err := r.checkBatch(hosts, false); err != nil {
		return Batch{}, err
	}

	batch := r.newBatch(ModeSequential)
	ctx, span := tracing.StartBatchSpan(ctx, r.opt.Tracer, batch.ID.String(), string(batch.Mode), len(hosts))
	log := r.batchLogger(batch)
	log.WithField("hosts", len(hosts)).Info("batch started")

	for i, host := range hosts {
		if err := ctx.Err(); err != nil {
			batch.Failures = append(batch.Failures, skipped(hosts[i:], err)...)
			break
		}

		report, err := r.runHost(ctx, host)
		if err != nil {
			if r.opt.FailFast {
				log.WithField("host", host).WithError(err).Error("aborting batch")
				batch.Reports = nil
				batch.Failures = []HostFailure{{Host: host, Err: err}}
				batch.Duration = time.Since(batch.Started)
				err = fmt.Errorf("%w: %w", ErrBatchAborted, err)
				tracing.EndSpan(span, err)
				return batch, err
			}
			log.WithField("host", host).WithError(err).Warn("host skipped")
			batch.Failures = append(batch.Failures, HostFailure{Host: host, Err: err})
			continue
		}
		batch.Reports = append(batch.Reports, report)
	}

	return r.finish(batch, span, log), nil
}

type hostResult struct {
	host   string
	report metrics.HostReport
	err    error
}

// RunParallel tests hosts with a pool of min(Workers, len(hosts))
// goroutines. Results are merged by the calling goroutine as they complete.
// Invalid hosts are always isolated; FailFast does not apply.
func (r *Runner) RunParallel(ctx context.Context, hosts []string) (Batch, error) {
	if err := r.checkBatch(hosts, true); err != nil {
		return Batch{}, err
	}

	batch := r.newBatch(ModeParallel)
	ctx, span := tracing.StartBatchSpan(ctx, r.opt.Tracer, batch.ID.String(), string(batch.Mode), len(hosts))
	log := r.batchLogger(batch)
	workers := min(r.opt.Workers, len(hosts))
	log.WithFields(logrus.Fields{"hosts": len(hosts), "workers": workers}).Info("batch started")

	jobs := make(chan string)
	results := make(chan hostResult)

	// dispatched is written by the dispatcher before close(jobs) and read
	// after results is closed, which orders the accesses.
	var dispatched int
	go func() {
		defer close(jobs)
		for _, host := range hosts {
			select {
			case jobs <- host:
				dispatched++
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for host := range jobs {
				report, err := r.runHost(ctx, host)
				results <- hostResult{host: host, report: report, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.err != nil {
			log.WithField("host", res.host).WithError(res.err).Warn("host skipped")
			batch.Failures = append(batch.Failures, HostFailure{Host: res.host, Err: res.err})
			continue
		}
		batch.Reports = append(batch.Reports, res.report)
	}

	if dispatched < len(hosts) {
		batch.Failures = append(batch.Failures, skipped(hosts[dispatched:], ctx.Err())...)
	}

	return r.finish(batch, span, log), nil
}

func (r *Runner) runHost(ctx context.Context, host string) (metrics.HostReport, error) {
	ctx, span := tracing.StartHostSpan(ctx, r.opt.Tracer, host, r.opt.Count)
	r.opt.Observer.HostStarted(host)

	if !r.opt.Validator.Validate(host) {
		err := &HostError{Host: host, Err: ErrInvalidHost}
		r.opt.Observer.HostFailed(host, err)
		tracing.EndSpan(span, err)
		return metrics.HostReport{}, err
	}

	exec := &hostExecutor{
		inner:    r.exec,
		host:     host,
		logger:   r.opt.Logger,
		observer: r.opt.Observer,
	}
	outcomes, err := httpclient.ExecuteN(ctx, exec, host, r.opt.Timeout, r.opt.Count)
	if err != nil {
		err = &HostError{Host: host, Err: err}
		r.opt.Observer.HostFailed(host, err)
		tracing.EndSpan(span, err)
		return metrics.HostReport{}, err
	}

	report := metrics.Aggregate(host, outcomes)
	r.opt.Observer.HostDone(report)
	tracing.EndSpan(span, nil,
		tracing.AttrSuccess.Int(report.Success),
		tracing.AttrFailed.Int(report.Failed),
		tracing.AttrErrors.Int(report.Errors),
	)
	r.opt.Logger.WithFields(logrus.Fields{
		"host":    host,
		"success": report.Success,
		"failed":  report.Failed,
		"errors":  report.Errors,
		"other":   report.Other,
		"avg_ms":  metrics.RoundMs(report.MeanLatency),
	}).Debug("host done")
	return report, nil
}

func (r *Runner) checkCount() error {
	if r.opt.Count <= 0 {
		return fmt.Errorf("%w: count must be >= 1, got %d", ErrInvalidArgument, r.opt.Count)
	}
	return nil
}

func (r *Runner) checkBatch(hosts []string, parallel bool) error {
	if err := r.checkCount(); err != nil {
		return err
	}
	if parallel && r.opt.Workers <= 0 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidArgument, r.opt.Workers)
	}
	if len(hosts) == 0 {
		return ErrNoHosts
	}
	if s, ok := r.opt.Observer.(interface{ SetHosts(int) }); ok {
		s.SetHosts(len(hosts))
	}
	return nil
}

func (r *Runner) newBatch(mode Mode) Batch {
	return Batch{ID: ulid.Make(), Mode: mode, Started: time.Now()}
}

func (r *Runner) batchLogger(b Batch) logrus.FieldLogger {
	return r.opt.Logger.WithFields(logrus.Fields{
		"batch": b.ID.String(),
		"mode":  string(b.Mode),
	})
}

func (r *Runner) finish(b Batch, span trace.Span, log logrus.FieldLogger) Batch {
	b.Duration = time.Since(b.Started)
	log.WithFields(logrus.Fields{
		"reports":  len(b.Reports),
		"failures": len(b.Failures),
		"duration": b.Duration.String(),
	}).Info("batch finished")
	tracing.EndSpan(span, nil,
		tracing.AttrCount.Int(len(b.Reports)),
	)
	return b
}

func skipped(hosts []string, err error) []HostFailure {
	out := make([]HostFailure, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, HostFailure{Host: h, Err: &HostError{Host: h, Err: err}})
	}
	return out
}
