package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/internal/diskcache"
	"github.com/repvault/repvault/internal/ratelimit"
	"github.com/repvault/repvault/internal/snapshot"
	"github.com/repvault/repvault/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// cache is the disk-backed TTL cache shared by all commands.
var cache contract.Cache

// limiter is the sliding-window gate for outbound requests.
var limiter contract.Limiter

// storeManager owns the configured session and history stores.
var storeManager *snapshot.Manager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "repvault",
	Short:              "Keep workout tracking responsive when the network is not.",
	Long:               `RepVault is the local resilience layer for workout tracking: a disk cache, an outbound rate limiter, crash-safe session snapshots and lifecycle-proof rest timers.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env file is optional and loses to real environment variables.
	_ = godotenv.Load()

	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".repvault") // Name of config file (without extension)
		viper.SetConfigType("yaml")      // We'll use YAML format
		viper.AddConfigPath(".")         // Look in the current directory
		viper.AddConfigPath("$HOME")     // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("REPVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("max-requests", contract.DefaultMaxRequests)
	viper.SetDefault("rate-window", contract.DefaultRateWindow.String())
	viper.SetDefault("staleness-cutoff", contract.DefaultStalenessCutoff.String())
	viper.SetDefault("fetch-ttl", contract.DefaultFetchTTL.String())
	viper.SetDefault("session-backend", schema.FileBackend)
	viper.SetDefault("session-db", "")
	viper.SetDefault("snapshot-file", "")
	viper.SetDefault("cache-dir", "")
	viper.SetDefault("notify-command", "")
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config, runs validation and wires the stores.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	// This function populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Initialize the cache, limiter and session stores with validated config.
	cache = diskcache.New(cfg.CacheDir)
	limiter = ratelimit.New(cfg.MaxRequests, cfg.RateWindow)

	mgr, err := snapshot.NewManager(cfg.SessionBackend, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	storeManager = mgr

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if storeManager != nil {
			storeManager.Close()
		}
	}()
	return rootCmd.Execute()
}
