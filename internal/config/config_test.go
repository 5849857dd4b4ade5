package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return &cfg
}

// TestSetDefaults_ProducesValidConfig verifies the defaults alone yield a
// configuration every component can run with.
func TestSetDefaults_ProducesValidConfig(t *testing.T) {
	cfg := defaultConfig(t)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "permissive", cfg.Detector.Mode)
	assert.Equal(t, 10, cfg.Detector.MaxAncestorDepth)
	assert.Equal(t, 100, cfg.Detector.TraditionalBonus)

	assert.Equal(t, 15*time.Second, cfg.Fetcher.RequestTimeout)
	assert.Equal(t, 3, cfg.Fetcher.Attempts)
	assert.Equal(t, int64(10<<20), cfg.Fetcher.MaxBodyBytes)

	assert.Equal(t, 5, cfg.History.Limit)
	assert.Equal(t, "authscope", cfg.Logger.ServiceName)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad logger format", func(c *Config) { c.Logger.Format = "xml" }},
		{"bad detector mode", func(c *Config) { c.Detector.Mode = "fuzzy" }},
		{"zero ancestor depth", func(c *Config) { c.Detector.MaxAncestorDepth = 0 }},
		{"zero attempts", func(c *Config) { c.Fetcher.Attempts = 0 }},
		{"zero timeout", func(c *Config) { c.Fetcher.RequestTimeout = 0 }},
		{"zero history limit", func(c *Config) { c.History.Limit = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(t)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// TestEnvOverride verifies the AUTHSCOPE_* environment binding path used by
// cmd/root.go applies on top of defaults.
func TestEnvOverride(t *testing.T) {
	t.Setenv("AUTHSCOPE_DETECTOR_MODE", "strict")

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("AUTHSCOPE")
	v.SetEnvKeyReplacer(envKeyReplacer())
	v.AutomaticEnv()

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, "strict", cfg.Detector.Mode)
}
