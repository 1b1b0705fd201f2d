package contract

import (
	"testing"
	"time"

	"github.com/repvault/repvault/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
		check       func(*testing.T, *Config)
	}{
		{
			name: "valid minimal config",
			input: &ConfigRawInput{
				MaxRequests: 30,
				Output:      "text",
				ColorStr:    "yes",
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultRateWindow, cfg.RateWindow)
				assert.Equal(t, DefaultStalenessCutoff, cfg.StalenessCutoff)
				assert.Equal(t, DefaultFetchTTL, cfg.FetchTTL)
				assert.Equal(t, schema.FileBackend, cfg.SessionBackend)
				assert.NotEmpty(t, cfg.CacheDir)
				assert.NotEmpty(t, cfg.SnapshotPath)
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name: "explicit durations parsed",
			input: &ConfigRawInput{
				MaxRequests:    10,
				RateWindowStr:  "30s",
				StaleCutoffStr: "2h",
				FetchTTLStr:    "5m",
				Output:         "json",
				ColorStr:       "no",
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 30*time.Second, cfg.RateWindow)
				assert.Equal(t, 2*time.Hour, cfg.StalenessCutoff)
				assert.Equal(t, 5*time.Minute, cfg.FetchTTL)
				assert.Equal(t, schema.JSONOut, cfg.Output)
				assert.False(t, cfg.UseColors)
			},
		},
		{
			name: "sqlite backend accepted",
			input: &ConfigRawInput{
				MaxRequests:    30,
				SessionBackend: "sqlite",
				ColorStr:       "yes",
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.SessionBackend)
				assert.NotEmpty(t, cfg.SessionDBPath)
			},
		},
		{
			name: "zero max requests rejected",
			input: &ConfigRawInput{
				MaxRequests: 0,
				ColorStr:    "yes",
			},
			expectError: true,
		},
		{
			name: "bad rate window rejected",
			input: &ConfigRawInput{
				MaxRequests:   30,
				RateWindowStr: "soon",
				ColorStr:      "yes",
			},
			expectError: true,
		},
		{
			name: "negative staleness cutoff rejected",
			input: &ConfigRawInput{
				MaxRequests:    30,
				StaleCutoffStr: "-1h",
				ColorStr:       "yes",
			},
			expectError: true,
		},
		{
			name: "unknown session backend rejected",
			input: &ConfigRawInput{
				MaxRequests:    30,
				SessionBackend: "redis",
				ColorStr:       "yes",
			},
			expectError: true,
		},
		{
			name: "unknown output mode rejected",
			input: &ConfigRawInput{
				MaxRequests: 30,
				Output:      "csv",
				ColorStr:    "yes",
			},
			expectError: true,
		},
		{
			name: "negative width rejected",
			input: &ConfigRawInput{
				MaxRequests: 30,
				Width:       -5,
				ColorStr:    "yes",
			},
			expectError: true,
		},
		{
			name: "bad color string rejected",
			input: &ConfigRawInput{
				MaxRequests: 30,
				ColorStr:    "maybe",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(cfg, tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{MaxRequests: 30, CacheDir: "/tmp/cache"}
	clone := cfg.Clone()
	clone.MaxRequests = 5

	assert.Equal(t, 30, cfg.MaxRequests, "mutating the clone must not touch the original")
	assert.Equal(t, "/tmp/cache", clone.CacheDir)
}
