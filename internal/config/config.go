// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envKeyReplacer maps nested config keys to environment variable segments,
// e.g. detector.mode -> AUTHSCOPE_DETECTOR_MODE.
func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// BindEnv wires the AUTHSCOPE_* environment namespace into v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("AUTHSCOPE")
	v.SetEnvKeyReplacer(envKeyReplacer())
	v.AutomaticEnv()
}

// Config holds the entire application configuration. Values are populated by
// Viper from the config file, AUTHSCOPE_* environment variables, and bound
// command-line flags, in ascending order of precedence.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher" yaml:"fetcher"`
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	// Scan gets its marching orders from CLI flags, not the config file.
	Scan ScanConfig `mapstructure:"-" yaml:"-"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes, per rotated file
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// FetcherConfig configures the HTML fetcher boundary.
type FetcherConfig struct {
	// RequestTimeout bounds a single fetch attempt end to end.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	// Attempts is the retry budget. Each attempt rotates to the next
	// browser header profile.
	Attempts int `mapstructure:"attempts" yaml:"attempts"`
	// RetryBackoff is the base delay between attempts, scaled linearly.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" yaml:"retry_backoff"`
	// RatePerHost limits outbound requests per second to any single host.
	RatePerHost float64 `mapstructure:"rate_per_host" yaml:"rate_per_host"`
	RateBurst   int     `mapstructure:"rate_burst" yaml:"rate_burst"`
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes    int64 `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	IgnoreTLSErrors bool  `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// DetectorConfig configures the detection core. The depth and bonus values
// are tunable policy knobs; the defaults reproduce the historical heuristic.
type DetectorConfig struct {
	// Mode is the strictness, "permissive" or "strict".
	Mode string `mapstructure:"mode" yaml:"mode"`
	// MaxAncestorDepth caps the container locator's upward walk.
	MaxAncestorDepth int `mapstructure:"max_ancestor_depth" yaml:"max_ancestor_depth"`
	// TraditionalBonus is added to the score of a container holding both an
	// identity input and a password input, so a complete login form always
	// outranks a bare email field.
	TraditionalBonus int `mapstructure:"traditional_bonus" yaml:"traditional_bonus"`
}

// HistoryConfig configures the persisted list of submitted URLs.
type HistoryConfig struct {
	// Path to the history file. Empty means ~/.authscope/history.json.
	Path string `mapstructure:"path" yaml:"path"`
	// Limit caps how many entries are retained.
	Limit int `mapstructure:"limit" yaml:"limit"`
}

// ScanConfig centralizes the runtime settings of a single detect invocation.
type ScanConfig struct {
	Targets     []string
	File        string
	Output      string
	Format      string
	Concurrency int
	NoHistory   bool
}

// SetDefaults registers every default with Viper so that Unmarshal yields a
// fully usable configuration even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "authscope")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("fetcher.request_timeout", 15*time.Second)
	v.SetDefault("fetcher.attempts", 3)
	v.SetDefault("fetcher.retry_backoff", 250*time.Millisecond)
	v.SetDefault("fetcher.rate_per_host", 4.0)
	v.SetDefault("fetcher.rate_burst", 2)
	v.SetDefault("fetcher.max_body_bytes", int64(10<<20))
	v.SetDefault("fetcher.ignore_tls_errors", false)

	v.SetDefault("detector.mode", "permissive")
	v.SetDefault("detector.max_ancestor_depth", 10)
	v.SetDefault("detector.traditional_bonus", 100)

	v.SetDefault("history.path", "")
	v.SetDefault("history.limit", 5)
}

// Validate rejects configurations the components cannot run with.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be \"console\" or \"json\", got %q", c.Logger.Format)
	}
	switch c.Detector.Mode {
	case "permissive", "strict":
	default:
		return fmt.Errorf("detector.mode must be \"permissive\" or \"strict\", got %q", c.Detector.Mode)
	}
	if c.Detector.MaxAncestorDepth <= 0 {
		return fmt.Errorf("detector.max_ancestor_depth must be positive, got %d", c.Detector.MaxAncestorDepth)
	}
	if c.Fetcher.Attempts <= 0 {
		return fmt.Errorf("fetcher.attempts must be positive, got %d", c.Fetcher.Attempts)
	}
	if c.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be positive, got %s", c.Fetcher.RequestTimeout)
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("history.limit must be positive, got %d", c.History.Limit)
	}
	return nil
}
