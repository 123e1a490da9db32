package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hostbench",
		Short:         "Measure HTTP availability and latency across a list of hosts",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Host source flags
	flags.StringSliceP("hosts", "H", nil, "Comma-separated list of hosts")
	flags.StringP("file", "F", "", "File with one host per line")
	flags.String("har", "", "HAR capture whose GET request URLs become the host list")

	// Benchmark flags
	flags.IntP("count", "C", DefaultCount, "Number of requests per host")
	flags.DurationP("timeout", "T", DefaultTimeout, "Per-request response header timeout")
	flags.IntP("parallel", "P", 0, "Number of hosts tested in parallel (enables parallel mode)")
	flags.Int("rate", 0, "Global requests per second limit (0 means unlimited)")
	flags.Bool("fail-fast", false, "Abort a sequential run on the first invalid host and discard all reports")

	// Output flags
	flags.StringP("output", "O", "", "Write the report to this file instead of stdout")
	flags.String("format", string(FormatText), "Report format: text, json, yaml or html")
	flags.Bool("progress", false, "Show a live progress line on stderr")
	flags.Bool("dashboard", false, "Show a live terminal dashboard")
	flags.StringSlice("threshold", nil, "Per-host threshold (repeatable, e.g. 'latency:avg < 200')")
	flags.String("prom-file", "", "Write per-host Prometheus metrics in textfile format")

	// Configuration flags
	flags.String("config", "", "Path to configuration file (JSON, YAML or TOML)")
	flags.String("env-file", "", "Path to a dotenv file (default .env when present)")

	// Logging flags
	flags.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("log-file", "", "Write logs to a rotated file instead of stderr")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (host:port)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.String("tracing-service-name", "", "Service name reported in traces")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.Bool("tracing-insecure", false, "Disable TLS towards the OTLP collector")
	flags.Bool("tracing-propagate", false, "Inject W3C trace headers into requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file and the environment.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("hosts") || fs.Changed("file") || fs.Changed("har") {
		// A host source on the command line replaces any configured one.
		cfg.Hosts, cfg.HostsFile, cfg.HARFile = nil, "", ""
	}
	if fs.Changed("hosts") {
		val, err := fs.GetStringSlice("hosts")
		if err != nil {
			return err
		}
		cfg.Hosts = cleanHosts(val)
	}
	if fs.Changed("file") {
		val, err := fs.GetString("file")
		if err != nil {
			return err
		}
		cfg.HostsFile = strings.TrimSpace(val)
	}
	if fs.Changed("har") {
		val, err := fs.GetString("har")
		if err != nil {
			return err
		}
		cfg.HARFile = strings.TrimSpace(val)
	}
	if fs.Changed("count") {
		val, err := fs.GetInt("count")
		if err != nil {
			return err
		}
		cfg.Count = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("parallel") {
		val, err := fs.GetInt("parallel")
		if err != nil {
			return err
		}
		cfg.Workers = val
		cfg.Parallel = true
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("fail-fast") {
		val, err := fs.GetBool("fail-fast")
		if err != nil {
			return err
		}
		cfg.FailFast = val
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = strings.TrimSpace(val)
	}
	if fs.Changed("format") {
		val, err := fs.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("progress") {
		val, err := fs.GetBool("progress")
		if err != nil {
			return err
		}
		cfg.Progress = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("prom-file") {
		val, err := fs.GetString("prom-file")
		if err != nil {
			return err
		}
		cfg.PromFile = strings.TrimSpace(val)
	}

	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("log-format") {
		val, err := fs.GetString("log-format")
		if err != nil {
			return err
		}
		cfg.Log.Format = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("log-file") {
		val, err := fs.GetString("log-file")
		if err != nil {
			return err
		}
		cfg.Log.File = strings.TrimSpace(val)
	}

	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = &val
	}

	return nil
}

// cleanHosts trims every entry and drops empty ones.
func cleanHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
