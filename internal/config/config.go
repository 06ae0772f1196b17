// Package config provides configuration structures and loading for cdosync.
package config

import "time"

// Import submission modes.
const (
	ModeDryRun = "dry_run"
	ModeLive   = "live"
)

// Config represents the complete application configuration.
type Config struct {
	Client       string                       `yaml:"client" mapstructure:"client"`
	Eloqua       EloquaConfig                 `yaml:"eloqua" mapstructure:"eloqua"`
	Storage      StorageConfig                `yaml:"storage" mapstructure:"storage"`
	Database     DatabaseConfig               `yaml:"database" mapstructure:"database"`
	Notification NotificationConfig           `yaml:"notification" mapstructure:"notification"`
	Processing   ProcessingConfig             `yaml:"processing" mapstructure:"processing"`
	Integrations map[string]IntegrationConfig `yaml:"integrations" mapstructure:"integrations"`
	Logging      LoggingConfig                `yaml:"logging" mapstructure:"logging"`
}

// EloquaConfig holds credentials and endpoints for the marketing platform.
type EloquaConfig struct {
	Site           string `yaml:"site" mapstructure:"site"`
	Username       string `yaml:"username" mapstructure:"username"`
	Password       string `yaml:"password" mapstructure:"password"`
	LoginURL       string `yaml:"login_url" mapstructure:"login_url"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"` // skips login discovery when set
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// Timeout returns the HTTP timeout for platform requests.
func (e EloquaConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// StorageConfig locates the bucket holding the provider's flat files.
type StorageConfig struct {
	Bucket          string `yaml:"bucket" mapstructure:"bucket"`
	Prefix          string `yaml:"prefix" mapstructure:"prefix"`
	Region          string `yaml:"region" mapstructure:"region"`
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"` // S3-compatible endpoint override
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
}

// DatabaseConfig represents the MySQL database receiving run summaries.
type DatabaseConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
	SummaryTable       string `yaml:"summary_table" mapstructure:"summary_table"`
}

// NotificationConfig configures the run outcome email.
type NotificationConfig struct {
	Enabled         bool     `yaml:"enabled" mapstructure:"enabled"`
	APIURL          string   `yaml:"api_url" mapstructure:"api_url"` // Mailgun messages endpoint
	APIKey          string   `yaml:"api_key" mapstructure:"api_key"`
	From            string   `yaml:"from" mapstructure:"from"`
	To              []string `yaml:"to" mapstructure:"to"`
	SubjectTemplate string   `yaml:"subject_template" mapstructure:"subject_template"`
	BodyTemplate    string   `yaml:"body_template" mapstructure:"body_template"`
}

// ProcessingConfig controls paging, batching, polling and retries.
type ProcessingConfig struct {
	PageSize                int    `yaml:"page_size" mapstructure:"page_size"`
	BatchSize               int    `yaml:"batch_size" mapstructure:"batch_size"`
	MaxAttempts             int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	RetryDelaySeconds       int    `yaml:"retry_delay_seconds" mapstructure:"retry_delay_seconds"`
	PollIntervalSeconds     int    `yaml:"poll_interval_seconds" mapstructure:"poll_interval_seconds"`
	MaxPolls                int    `yaml:"max_polls" mapstructure:"max_polls"`
	Mode                    string `yaml:"mode" mapstructure:"mode"` // dry_run or live
	ContinueOnSyncFailure   bool   `yaml:"continue_on_sync_failure" mapstructure:"continue_on_sync_failure"`
	ImportAttempts          int    `yaml:"import_attempts" mapstructure:"import_attempts"` // tries per import batch
	ImportRetryDelaySeconds int    `yaml:"import_retry_delay_seconds" mapstructure:"import_retry_delay_seconds"`
	Timezone                string `yaml:"timezone" mapstructure:"timezone"`
}

// RetryDelay returns the wait between pipeline attempts.
func (p ProcessingConfig) RetryDelay() time.Duration {
	return time.Duration(p.RetryDelaySeconds) * time.Second
}

// ImportRetryDelay returns the wait between tries of one import batch.
func (p ProcessingConfig) ImportRetryDelay() time.Duration {
	return time.Duration(p.ImportRetryDelaySeconds) * time.Second
}

// PollInterval returns the wait between sync status checks.
func (p ProcessingConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalSeconds) * time.Second
}

// IsLive reports whether imports are actually submitted.
func (p ProcessingConfig) IsLive() bool {
	return p.Mode == ModeLive
}

// IntegrationConfig describes one entity pipeline. Empty fields fall back to
// the preset named by Entity.
type IntegrationConfig struct {
	Entity          string            `yaml:"entity" mapstructure:"entity"` // membership, ticket_activity, tickets
	FileMarker      string            `yaml:"file_marker" mapstructure:"file_marker"`
	CustomObjectID  int               `yaml:"custom_object_id" mapstructure:"custom_object_id"`
	KeyField        string            `yaml:"key_field" mapstructure:"key_field"`
	IdentifierField string            `yaml:"identifier_field" mapstructure:"identifier_field"`
	Fields          []string          `yaml:"fields" mapstructure:"fields"`
	Mapping         []FieldMapping    `yaml:"mapping" mapstructure:"mapping"`
	LinkContacts    LinkConfig        `yaml:"link_contacts" mapstructure:"link_contacts"`
	Prune           PruneConfig       `yaml:"prune" mapstructure:"prune"`
	Processing      *ProcessingConfig `yaml:"processing,omitempty" mapstructure:"processing"`
}

// FieldMapping maps one source field to an import column and CDO field.
type FieldMapping struct {
	Source  string `yaml:"source" mapstructure:"source"`
	Column  string `yaml:"column" mapstructure:"column"`
	FieldID int    `yaml:"field_id" mapstructure:"field_id"`
}

// LinkConfig controls linking imported rows to existing contacts.
type LinkConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	SourceField string `yaml:"source_field" mapstructure:"source_field"` // import column holding the email
}

// PruneConfig controls removal of CDO instances absent from the source file.
type PruneConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Eloqua: EloquaConfig{
			LoginURL:       "https://login.eloqua.com/id",
			TimeoutSeconds: 60,
		},
		Storage: StorageConfig{
			Region: "us-east-1",
		},
		Database: DatabaseConfig{
			Enabled:            false,
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     2,
			MaxIdleConnections: 1,
			SummaryTable:       "integration_summary",
		},
		Processing: ProcessingConfig{
			PageSize:                50000,
			BatchSize:               10000,
			MaxAttempts:             5,
			RetryDelaySeconds:       300,
			PollIntervalSeconds:     5,
			MaxPolls:                720,
			Mode:                    ModeDryRun,
			ImportAttempts:          5,
			ImportRetryDelaySeconds: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// GetIntegrationProcessing returns the processing config for an integration by
// name, falling back to global if not set.
func (c *Config) GetIntegrationProcessing(name string) ProcessingConfig {
	integration, err := c.GetIntegration(name)
	if err != nil {
		return c.Processing
	}
	return integration.GetProcessing(c.Processing)
}

// GetProcessing returns the processing config for an integration, falling back
// to global if not set.
func (ic *IntegrationConfig) GetProcessing(global ProcessingConfig) ProcessingConfig {
	if ic.Processing == nil {
		return global
	}

	result := global
	if ic.Processing.PageSize > 0 {
		result.PageSize = ic.Processing.PageSize
	}
	if ic.Processing.BatchSize > 0 {
		result.BatchSize = ic.Processing.BatchSize
	}
	if ic.Processing.MaxAttempts > 0 {
		result.MaxAttempts = ic.Processing.MaxAttempts
	}
	if ic.Processing.RetryDelaySeconds > 0 {
		result.RetryDelaySeconds = ic.Processing.RetryDelaySeconds
	}
	if ic.Processing.PollIntervalSeconds > 0 {
		result.PollIntervalSeconds = ic.Processing.PollIntervalSeconds
	}
	if ic.Processing.MaxPolls > 0 {
		result.MaxPolls = ic.Processing.MaxPolls
	}
	if ic.Processing.ImportAttempts > 0 {
		result.ImportAttempts = ic.Processing.ImportAttempts
	}
	if ic.Processing.ImportRetryDelaySeconds > 0 {
		result.ImportRetryDelaySeconds = ic.Processing.ImportRetryDelaySeconds
	}
	if ic.Processing.Mode != "" {
		result.Mode = ic.Processing.Mode
	}
	if ic.Processing.Timezone != "" {
		result.Timezone = ic.Processing.Timezone
	}
	result.ContinueOnSyncFailure = ic.Processing.ContinueOnSyncFailure || global.ContinueOnSyncFailure
	return result
}
