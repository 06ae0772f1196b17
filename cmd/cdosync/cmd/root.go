package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/logger"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile     string
	logLevel    string
	logFormat   string
	mode        string
	batchSize   int
	maxAttempts int
)

var rootCmd = &cobra.Command{
	Use:   "cdosync",
	Short: "Kore flat file to Eloqua custom object sync",
	Long: `cdosync loads the ticketing provider's pipe-delimited exports from S3,
keeps the rows belonging to known Eloqua contacts, and upserts them into
Eloqua custom data objects through the Bulk API.

Each integration (membership, ticket activity, tickets, or a custom entity)
is retried as a whole until it succeeds or runs out of attempts. Outcomes
are written to a MySQL summary table and emailed.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorText("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "cdosync.yaml",
		"Path to configuration file")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	rootCmd.PersistentFlags().StringVar(&mode, "mode", "",
		"Override import mode (dry_run, live)")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0,
		"Override import batch size (records per import)")
	rootCmd.PersistentFlags().IntVar(&maxAttempts, "max-attempts", 0,
		"Override attempts per integration run")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel    string
	LogFormat   string
	Mode        string
	BatchSize   int
	MaxAttempts int
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		Mode:        mode,
		BatchSize:   batchSize,
		MaxAttempts: maxAttempts,
	}
}

// loadConfig reads the config file and applies global CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	o := GetCLIOverrides()
	cfg.ApplyOverrides(o.LogLevel, o.LogFormat, o.Mode, o.BatchSize, o.MaxAttempts)
	return cfg, nil
}

// loadValidConfig is loadConfig followed by validation.
func loadValidConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
