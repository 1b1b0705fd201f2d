package contract

import (
	"fmt"
	"time"

	"github.com/repvault/repvault/schema"
)

// Default values for configuration.
const (
	DefaultMaxRequests      = 30
	DefaultRateWindow       = time.Minute
	DefaultStalenessCutoff  = 4 * time.Hour
	DefaultFetchTTL         = 15 * time.Minute
	DefaultHistoryLimit     = 25
	MaxHistoryLimit         = 1000
	DefaultAutosaveInterval = 30 * time.Second
)

// Config holds the runtime configuration for the resilience layer.
// This struct remains the "final, validated" config.
type Config struct {
	CacheDir        string
	MaxRequests     int
	RateWindow      time.Duration
	StalenessCutoff time.Duration
	FetchTTL        time.Duration

	SessionBackend schema.StorageBackend
	SessionDBPath  string // sqlite backend only
	SnapshotPath   string // file backend only

	NotifyCommand string // external command for backstop notifications

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
}

// Clone returns a copy of the config so callers can override fields
// without mutating the shared instance.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ConfigRawInput holds the raw, unvalidated configuration from all
// sources (file, env, flags). Viper unmarshals into this struct.
type ConfigRawInput struct {
	CacheDir        string `mapstructure:"cache-dir"`
	MaxRequests     int    `mapstructure:"max-requests"`
	RateWindowStr   string `mapstructure:"rate-window"`
	StaleCutoffStr  string `mapstructure:"staleness-cutoff"`
	FetchTTLStr     string `mapstructure:"fetch-ttl"`
	SessionBackend  string `mapstructure:"session-backend"`
	SessionDBPath   string `mapstructure:"session-db"`
	SnapshotPath    string `mapstructure:"snapshot-file"`
	NotifyCommand   string `mapstructure:"notify-command"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Width           int    `mapstructure:"width"`
	ColorStr        string `mapstructure:"color"`
}

// ProcessAndValidate converts the raw input into the final validated
// config, applying defaults where fields were left empty.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheDir = input.CacheDir
	if cfg.CacheDir == "" {
		cfg.CacheDir = GetCacheDirPath()
	}

	cfg.MaxRequests = input.MaxRequests
	if cfg.MaxRequests <= 0 {
		return fmt.Errorf("max-requests must be positive, got %d", input.MaxRequests)
	}

	window, err := parseDurationOrDefault(input.RateWindowStr, DefaultRateWindow)
	if err != nil {
		return fmt.Errorf("invalid rate-window: %w", err)
	}
	cfg.RateWindow = window

	cutoff, err := parseDurationOrDefault(input.StaleCutoffStr, DefaultStalenessCutoff)
	if err != nil {
		return fmt.Errorf("invalid staleness-cutoff: %w", err)
	}
	cfg.StalenessCutoff = cutoff

	ttl, err := parseDurationOrDefault(input.FetchTTLStr, DefaultFetchTTL)
	if err != nil {
		return fmt.Errorf("invalid fetch-ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("fetch-ttl must be positive, got %s", ttl)
	}
	cfg.FetchTTL = ttl

	backend := schema.StorageBackend(input.SessionBackend)
	switch backend {
	case schema.FileBackend, schema.SQLiteBackend, schema.NoneBackend:
		cfg.SessionBackend = backend
	case "":
		cfg.SessionBackend = schema.FileBackend
	default:
		return fmt.Errorf("unsupported session backend: %s. Must be file, sqlite, or none", backend)
	}

	cfg.SessionDBPath = input.SessionDBPath
	if cfg.SessionDBPath == "" {
		cfg.SessionDBPath = GetSessionDBFilePath()
	}
	cfg.SnapshotPath = input.SnapshotPath
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = GetSnapshotFilePath()
	}

	cfg.NotifyCommand = input.NotifyCommand

	switch out := schema.OutputMode(input.Output); out {
	case schema.TextOut, schema.JSONOut:
		cfg.Output = out
	case "":
		cfg.Output = schema.TextOut
	default:
		return fmt.Errorf("unsupported output mode: %s. Must be text or json", out)
	}
	cfg.OutputFile = input.OutputFile

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative, got %d", input.Width)
	}
	cfg.Width = input.Width

	useColors, err := ParseBoolString(input.ColorStr)
	if err != nil {
		return fmt.Errorf("invalid color setting: %w", err)
	}
	cfg.UseColors = useColors

	return nil
}

// parseDurationOrDefault parses a Go duration string, returning the
// fallback when the input is empty.
func parseDurationOrDefault(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}
