package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "HOSTBENCH"

const defaultEnvFile = ".env"

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// Loader handles loading configuration from files, the environment and
// command-line arguments.
type Loader struct{}

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// settingKeys lists every key readable from config files and the environment.
// HOSTBENCH_LOG_LEVEL maps to "log.level".
var settingKeys = []string{
	"hosts", "file", "har", "count", "timeout", "parallel", "rate", "fail_fast",
	"output", "format", "progress", "dashboard", "thresholds", "prom_file",
	"log.level", "log.format", "log.file", "log.max_size_mb", "log.max_backups",
	"log.max_age_days", "log.compress",
	"tracing.endpoint", "tracing.protocol", "tracing.service_name",
	"tracing.sample_rate", "tracing.insecure", "tracing.propagate",
}

// envName returns the environment variable bound to a setting key.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Count:   DefaultCount,
		Timeout: DefaultTimeout,
		Format:  FormatText,
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}
}

// Load resolves configuration with precedence defaults < config file <
// environment (including the dotenv file) < flags.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath, _ := flagSet.GetString("config")
	envFile, _ := flagSet.GetString("env-file")

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	for _, key := range settingKeys {
		if err := cfgViper.BindEnv(key, envName(key)); err != nil {
			return nil, err
		}
	}

	usedEnvFile, err := applyEnvFile(cfgViper, envFile)
	if err != nil {
		return nil, err
	}

	settings := cfgViper.AllSettings()

	// Bare invocation with nothing configured anywhere shows usage.
	if len(args) == 0 && configPath == "" {
		if _, ok := lookupSetting(settings, "hosts", "file", "har"); !ok {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	cfg := Defaults()
	cfg.ConfigFile = configPath
	cfg.EnvFile = usedEnvFile

	if err := applyConfigSettings(&cfg, settings); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(&cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.HostsFile = strings.TrimSpace(cfg.HostsFile)
	cfg.HARFile = strings.TrimSpace(cfg.HARFile)
	cfg.Output = strings.TrimSpace(cfg.Output)
	cfg.Format = OutputFormat(strings.ToLower(string(cfg.Format)))
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Tracing.Protocol = strings.ToLower(cfg.Tracing.Protocol)

	return &cfg, nil
}

// applyEnvFile reads HOSTBENCH_* entries from a dotenv file into v. Real
// environment variables win over file entries. An explicit path must exist;
// the default .env is optional. The process environment is left untouched.
func applyEnvFile(v *viper.Viper, path string) (string, error) {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
		if _, err := os.Stat(path); err != nil {
			return "", nil
		}
	}

	entries, err := godotenv.Read(path)
	if err != nil {
		if explicit {
			return "", fmt.Errorf("read env file %s: %w", path, err)
		}
		return "", nil
	}

	for _, key := range settingKeys {
		name := envName(key)
		val, ok := entries[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(key, val)
	}
	return path, nil
}

type settingApplier struct {
	key   string
	apply func(cfg *Config, raw any) error
}

var settingAppliers = []settingApplier{
	{"hosts", func(cfg *Config, raw any) (err error) {
		cfg.Hosts, err = asStringSlice(raw)
		return err
	}},
	{"file", func(cfg *Config, raw any) (err error) {
		cfg.HostsFile, err = asString(raw)
		return err
	}},
	{"har", func(cfg *Config, raw any) (err error) {
		cfg.HARFile, err = asString(raw)
		return err
	}},
	{"count", func(cfg *Config, raw any) (err error) {
		cfg.Count, err = asInt(raw)
		return err
	}},
	{"timeout", func(cfg *Config, raw any) (err error) {
		cfg.Timeout, err = asDuration(raw)
		return err
	}},
	{"parallel", func(cfg *Config, raw any) error {
		// Only a worker count selects parallel mode; blank or null leaves it unset.
		if _, isBlank := blank(raw); raw == nil || isBlank {
			return nil
		}
		workers, err := asInt(raw)
		if err != nil {
			return err
		}
		cfg.Workers, cfg.Parallel = workers, true
		return nil
	}},
	{"rate", func(cfg *Config, raw any) (err error) {
		cfg.Rate, err = asInt(raw)
		return err
	}},
	{"fail_fast", func(cfg *Config, raw any) (err error) {
		cfg.FailFast, err = asBool(raw)
		return err
	}},
	{"output", func(cfg *Config, raw any) (err error) {
		cfg.Output, err = asString(raw)
		return err
	}},
	{"format", func(cfg *Config, raw any) error {
		s, err := asString(raw)
		if s != "" {
			cfg.Format = OutputFormat(strings.TrimSpace(s))
		}
		return err
	}},
	{"progress", func(cfg *Config, raw any) (err error) {
		cfg.Progress, err = asBool(raw)
		return err
	}},
	{"dashboard", func(cfg *Config, raw any) (err error) {
		cfg.Dashboard, err = asBool(raw)
		return err
	}},
	{"thresholds", func(cfg *Config, raw any) error {
		list, err := asThresholdList(raw)
		cfg.Thresholds = list
		return err
	}},
	{"prom_file", func(cfg *Config, raw any) (err error) {
		cfg.PromFile, err = asString(raw)
		return err
	}},
	{"log.level", func(cfg *Config, raw any) (err error) {
		cfg.Log.Level, err = asString(raw)
		return err
	}},
	{"log.format", func(cfg *Config, raw any) (err error) {
		cfg.Log.Format, err = asString(raw)
		return err
	}},
	{"log.file", func(cfg *Config, raw any) (err error) {
		cfg.Log.File, err = asString(raw)
		return err
	}},
	{"log.max_size_mb", func(cfg *Config, raw any) (err error) {
		cfg.Log.MaxSizeMB, err = asInt(raw)
		return err
	}},
	{"log.max_backups", func(cfg *Config, raw any) (err error) {
		cfg.Log.MaxBackups, err = asInt(raw)
		return err
	}},
	{"log.max_age_days", func(cfg *Config, raw any) (err error) {
		cfg.Log.MaxAgeDays, err = asInt(raw)
		return err
	}},
	{"log.compress", func(cfg *Config, raw any) (err error) {
		cfg.Log.Compress, err = asBool(raw)
		return err
	}},
	{"tracing.endpoint", func(cfg *Config, raw any) (err error) {
		cfg.Tracing.Endpoint, err = asString(raw)
		return err
	}},
	{"tracing.protocol", func(cfg *Config, raw any) (err error) {
		cfg.Tracing.Protocol, err = asString(raw)
		return err
	}},
	{"tracing.service_name", func(cfg *Config, raw any) (err error) {
		cfg.Tracing.ServiceName, err = asString(raw)
		return err
	}},
	{"tracing.sample_rate", func(cfg *Config, raw any) (err error) {
		cfg.Tracing.SampleRate, err = asFloat64(raw)
		return err
	}},
	{"tracing.insecure", func(cfg *Config, raw any) (err error) {
		cfg.Tracing.Insecure, err = asBool(raw)
		return err
	}},
	{"tracing.propagate", func(cfg *Config, raw any) error {
		b, err := asBool(raw)
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = &b
		return nil
	}},
}

// applyConfigSettings applies merged file and environment settings to cfg.
func applyConfigSettings(cfg *Config, settings map[string]any) error {
	if len(settings) == 0 {
		return nil
	}
	for _, s := range settingAppliers {
		raw, ok := lookupSetting(settings, s.key)
		if !ok {
			continue
		}
		if err := s.apply(cfg, raw); err != nil {
			return fmt.Errorf("%s: %w", s.key, err)
		}
	}
	return nil
}

// asThresholdList keeps commas inside a single threshold string; environment
// values separate thresholds with ';'.
func asThresholdList(raw any) ([]string, error) {
	if s, ok := raw.(string); ok {
		var out []string
		for _, part := range strings.Split(s, ";") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return asStringSlice(raw)
}
