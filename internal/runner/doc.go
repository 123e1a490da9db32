// Package runner orchestrates a hostbench batch.
//
// For every host the [Runner] validates the URL, issues Options.Count GET
// requests through an [Executor] and aggregates the outcomes into a
// [metrics.HostReport]:
//
//	r := runner.New(runner.Options{
//		Executor: httpclient.NewExecutor(httpclient.NewClient(5 * time.Second)),
//		Count:    10,
//		Timeout:  5 * time.Second,
//		Workers:  4,
//		Parallel: true,
//		Logger:   log,
//	})
//	batch, err := r.Run(ctx, hosts)
//
// # Modes
//
// [Runner.RunSequential] visits hosts in input order. [Runner.RunParallel]
// runs a bounded pool of Workers goroutines and merges results in completion
// order on the calling goroutine. Both isolate invalid hosts into
// Batch.Failures; with Options.FailFast a sequential run instead stops at the
// first invalid host, discards every report and returns [ErrBatchAborted].
//
// # Middleware
//
// [WithRateLimit] paces attempts with a golang.org/x/time/rate limiter.
// New applies it automatically when Options.RatePerSecond is positive.
//
// # Errors
//
// [ErrInvalidArgument] for Count or Workers below one, [ErrNoHosts] for an
// empty list and [*HostError] wrapping [ErrInvalidHost] for rejected hosts.
package runner
