package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns in credential and endpoint
// fields with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.Client = expandEnvVar(cfg.Client)

	cfg.Eloqua.Site = expandEnvVar(cfg.Eloqua.Site)
	cfg.Eloqua.Username = expandEnvVar(cfg.Eloqua.Username)
	cfg.Eloqua.Password = expandEnvVar(cfg.Eloqua.Password)
	cfg.Eloqua.BaseURL = expandEnvVar(cfg.Eloqua.BaseURL)

	cfg.Storage.Bucket = expandEnvVar(cfg.Storage.Bucket)
	cfg.Storage.Prefix = expandEnvVar(cfg.Storage.Prefix)
	cfg.Storage.Endpoint = expandEnvVar(cfg.Storage.Endpoint)
	cfg.Storage.AccessKeyID = expandEnvVar(cfg.Storage.AccessKeyID)
	cfg.Storage.SecretAccessKey = expandEnvVar(cfg.Storage.SecretAccessKey)

	cfg.Database.Host = expandEnvVar(cfg.Database.Host)
	cfg.Database.User = expandEnvVar(cfg.Database.User)
	cfg.Database.Password = expandEnvVar(cfg.Database.Password)
	cfg.Database.Database = expandEnvVar(cfg.Database.Database)

	cfg.Notification.APIURL = expandEnvVar(cfg.Notification.APIURL)
	cfg.Notification.APIKey = expandEnvVar(cfg.Notification.APIKey)
	cfg.Notification.From = expandEnvVar(cfg.Notification.From)
	for i, to := range cfg.Notification.To {
		cfg.Notification.To[i] = expandEnvVar(to)
	}

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// GetIntegration retrieves a specific integration configuration by name.
func (c *Config) GetIntegration(name string) (*IntegrationConfig, error) {
	integration, exists := c.Integrations[name]
	if !exists {
		return nil, fmt.Errorf("integration %q not found in configuration", name)
	}
	return &integration, nil
}

// ListIntegrations returns all integration names in sorted order.
func (c *Config) ListIntegrations() []string {
	names := make([]string, 0, len(c.Integrations))
	for name := range c.Integrations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyOverrides applies CLI flag overrides to the global configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat, mode string, batchSize, maxAttempts int) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if mode != "" {
		c.Processing.Mode = mode
	}
	if batchSize > 0 {
		c.Processing.BatchSize = batchSize
	}
	if maxAttempts > 0 {
		c.Processing.MaxAttempts = maxAttempts
	}
}

// ApplyIntegrationOverrides combines global, integration and CLI processing
// values for one integration.
func (c *Config) ApplyIntegrationOverrides(name, mode string, batchSize, maxAttempts int) ProcessingConfig {
	processing := c.GetIntegrationProcessing(name)

	if mode != "" {
		processing.Mode = mode
	}
	if batchSize > 0 {
		processing.BatchSize = batchSize
	}
	if maxAttempts > 0 {
		processing.MaxAttempts = maxAttempts
	}

	return processing
}
