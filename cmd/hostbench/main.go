package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/torosent/hostbench/internal/config"
	"github.com/torosent/hostbench/internal/dashboard"
	"github.com/torosent/hostbench/internal/har"
	"github.com/torosent/hostbench/internal/hosts"
	"github.com/torosent/hostbench/internal/httpclient"
	"github.com/torosent/hostbench/internal/logging"
	"github.com/torosent/hostbench/internal/metrics"
	"github.com/torosent/hostbench/internal/output"
	"github.com/torosent/hostbench/internal/promexport"
	"github.com/torosent/hostbench/internal/runner"
	"github.com/torosent/hostbench/internal/threshold"
	"github.com/torosent/hostbench/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

var errThresholdsFailed = errors.New("thresholds failed")

// newExecutor is swapped out in tests so no real traffic leaves the process.
var newExecutor = func(cfg *config.Config, provider *tracing.Provider) runner.Executor {
	return httpclient.NewExecutor(
		httpclient.NewClient(cfg.Timeout),
		httpclient.WithTracer(provider.Tracer(), provider.ShouldPropagate()),
	)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	hostList, err := resolveHosts(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing, tracing.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	collector := metrics.NewCollector()

	r := runner.New(runner.Options{
		Executor:      newExecutor(cfg, provider),
		Count:         cfg.Count,
		Timeout:       cfg.Timeout,
		Parallel:      cfg.Parallel,
		Workers:       cfg.Workers,
		FailFast:      cfg.FailFast,
		RatePerSecond: cfg.Rate,
		Logger:        logger,
		Tracer:        provider.Tracer(),
		Observer:      collector,
	})

	stopLive, err := startLiveView(cfg, collector, len(hostList), cancel, stderr)
	if err != nil {
		return err
	}

	collector.Start()
	batch, runErr := r.Run(ctx, hostList)
	stopLive()
	if runErr != nil {
		return runErr
	}

	results := threshold.NewEvaluator(thresholds).Evaluate(batch.Reports)

	if err := writeReport(cfg, batch, results, stdout); err != nil {
		return err
	}
	if cfg.PromFile != "" {
		if err := promexport.Export(cfg.PromFile, batch); err != nil {
			return err
		}
		logger.WithField("path", cfg.PromFile).Debug("prometheus textfile written")
	}

	if !threshold.AllPassed(results) {
		failed := 0
		for _, res := range results {
			if !res.Pass {
				failed++
			}
		}
		return fmt.Errorf("%w: %d of %d", errThresholdsFailed, failed, len(results))
	}
	return nil
}

func resolveHosts(cfg *config.Config) ([]string, error) {
	switch {
	case cfg.HostsFile != "":
		return hosts.ReadFile(cfg.HostsFile)
	case cfg.HARFile != "":
		return har.ReadFile(cfg.HARFile)
	}
	return cfg.Hosts, nil
}

// startLiveView starts the dashboard or the progress line, whichever is
// configured, and returns the function that stops it.
func startLiveView(cfg *config.Config, collector *metrics.Collector, hostCount int, cancel context.CancelFunc, stderr io.Writer) (func(), error) {
	switch {
	case cfg.Dashboard:
		dash, err := dashboard.New(collector, dashboard.RunConfig{
			Hosts:      hostCount,
			Count:      cfg.Count,
			Timeout:    cfg.Timeout,
			Parallel:   cfg.Parallel,
			Workers:    cfg.Workers,
			Rate:       float64(cfg.Rate),
			ConfigFile: cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return nil, err
		}
		dash.Start()
		return dash.Stop, nil
	case cfg.Progress:
		progress := output.NewProgressReporter(collector, progressInterval, stderr)
		progress.Start()
		return progress.Stop, nil
	default:
		return func() {}, nil
	}
}

func writeReport(cfg *config.Config, batch runner.Batch, results []threshold.Result, stdout io.Writer) error {
	render := func(w io.Writer) error {
		return output.Render(w, cfg.Format, batch, results)
	}
	if cfg.Output == "" {
		return render(stdout)
	}
	if err := output.WriteFile(cfg.Output, render); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Report written to %s\n", cfg.Output)
	return nil
}
