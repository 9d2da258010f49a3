// Package config provides loading and validation of uniguard.yaml
// configuration files. Every field has a default, so an absent file yields a
// working configuration that reproduces the stock audit battery.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/uniguard/auditerr"
)

// Environment variables consulted by LoadDefault and ApplyEnv.
const (
	EnvConfigPath   = "UNIGUARD_CONFIG"
	EnvLogPath      = "UNIGUARD_LOG_PATH"
	EnvLogLevel     = "UNIGUARD_LOG_LEVEL"
	EnvProbeAddress = "UNIGUARD_PROBE_ADDRESS"
)

// Defaults.
const (
	DefaultLogPath      = "./logs/uniguard.log"
	DefaultProbeAddress = "8.8.8.8"
	DefaultSettleDelay  = time.Second
	DefaultCycleID      = "MANUAL"
)

// File names searched when Load is given a directory.
var configFileNames = []string{"uniguard.yaml", "uniguard.yml"}

// Config represents a uniguard.yaml configuration file.
type Config struct {
	// Log configures the audit trail destination.
	Log LogConfig `yaml:"log"`

	// Checks configures the diagnostic battery.
	Checks ChecksConfig `yaml:"checks"`

	// Worker configures how the supervisor waits on the worker.
	Worker WorkerConfig `yaml:"worker"`

	// Diagnostics configures the internal slog logger.
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// LogConfig configures the append-only audit log.
type LogConfig struct {
	// Path is the audit log file. Its directory must already exist.
	Path string `yaml:"path"`
}

// ChecksConfig configures the diagnostic battery.
type ChecksConfig struct {
	// SettleDelay is the pause after each observational check.
	// Format: Go duration string (e.g., "1s"). "0s" disables it.
	SettleDelay string `yaml:"settle_delay,omitempty"`

	// ProbeAddress is the address pinged by the Network Check.
	ProbeAddress string `yaml:"probe_address,omitempty"`

	// CommandTimeout bounds each diagnostic command. Empty means unbounded.
	CommandTimeout string `yaml:"command_timeout,omitempty"`

	// Overrides replace the shell command line of a check, keyed by check
	// name (e.g., "Disk Analysis").
	Overrides map[string]string `yaml:"overrides,omitempty"`
}

// WorkerConfig configures the supervisor's wait.
type WorkerConfig struct {
	// Timeout bounds the wait for worker termination. Empty or "0s" means
	// unbounded, in which case a hung diagnostic command blocks the cycle.
	Timeout string `yaml:"timeout,omitempty"`
}

// DiagnosticsConfig configures internal diagnostics, which never reach the
// audit log.
type DiagnosticsConfig struct {
	// Level is one of debug, info, warn, error. Default: warn.
	Level string `yaml:"level,omitempty"`

	// Format is "json" or "text". Default: json.
	Format string `yaml:"format,omitempty"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Log: LogConfig{Path: DefaultLogPath},
		Checks: ChecksConfig{
			SettleDelay:  DefaultSettleDelay.String(),
			ProbeAddress: DefaultProbeAddress,
		},
		Diagnostics: DiagnosticsConfig{
			Level:  "warn",
			Format: "json",
		},
	}
}

// GetSettleDelay parses the settle delay and returns a duration.
// Returns the default value if not set or invalid.
func (c *ChecksConfig) GetSettleDelay() time.Duration {
	if c == nil || c.SettleDelay == "" {
		return DefaultSettleDelay
	}
	d, err := time.ParseDuration(c.SettleDelay)
	if err != nil || d < 0 {
		return DefaultSettleDelay
	}
	return d
}

// GetCommandTimeout parses the per-command timeout. Zero means unbounded.
func (c *ChecksConfig) GetCommandTimeout() time.Duration {
	if c == nil || c.CommandTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.CommandTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// GetProbeAddress returns the probe address or the default value.
func (c *ChecksConfig) GetProbeAddress() string {
	if c == nil || c.ProbeAddress == "" {
		return DefaultProbeAddress
	}
	return c.ProbeAddress
}

// GetTimeout parses the worker wait timeout. Zero means unbounded.
func (w *WorkerConfig) GetTimeout() time.Duration {
	if w == nil || w.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(w.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Log.Path == "" {
		return invalid("log.path is required")
	}
	if err := validDuration("checks.settle_delay", c.Checks.SettleDelay); err != nil {
		return err
	}
	if err := validDuration("checks.command_timeout", c.Checks.CommandTimeout); err != nil {
		return err
	}
	if err := validDuration("worker.timeout", c.Worker.Timeout); err != nil {
		return err
	}
	if c.Checks.ProbeAddress == "" {
		return invalid("checks.probe_address is required")
	}
	switch c.Diagnostics.Format {
	case "", "json", "text":
	default:
		return invalid(fmt.Sprintf("diagnostics.format %q must be json or text", c.Diagnostics.Format))
	}
	return nil
}

func validDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return invalid(fmt.Sprintf("%s: %v", field, err))
	}
	if d < 0 {
		return invalid(fmt.Sprintf("%s must not be negative", field))
	}
	return nil
}

func invalid(msg string) error {
	return auditerr.New("config", "validate", auditerr.ErrCodeInvalidConfig, msg)
}

// ApplyEnv overrides fields from UNIGUARD_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogPath); v != "" {
		c.Log.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Diagnostics.Level = v
	}
	if v := os.Getenv(EnvProbeAddress); v != "" {
		c.Checks.ProbeAddress = v
	}
}

// Load reads and parses a uniguard.yaml file over the defaults, applies
// environment overrides, and validates the result. If the path is a
// directory, it looks for uniguard.yaml or uniguard.yml in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		configPath = ""
		for _, name := range configFileNames {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			return nil, fmt.Errorf("no uniguard.yaml or uniguard.yml found in %s", path)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the file named by UNIGUARD_CONFIG when set, and
// otherwise returns the defaults with environment overrides applied.
func LoadDefault() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	cfg := Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
