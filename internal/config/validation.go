package config

import (
	"fmt"
	"strings"
	"time"
)

// Entity names with built-in presets.
const (
	EntityMembership     = "membership"
	EntityTicketActivity = "ticket_activity"
	EntityTickets        = "tickets"
)

var knownEntities = map[string]bool{
	EntityMembership:     true,
	EntityTicketActivity: true,
	EntityTickets:        true,
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateEloqua()...)
	errors = append(errors, c.validateStorage()...)

	if c.Database.Enabled {
		errors = append(errors, c.validateDatabase()...)
	}

	if c.Notification.Enabled {
		errors = append(errors, c.validateNotification()...)
	}

	if len(c.Integrations) == 0 {
		errors = append(errors, ValidationError{
			Field:   "integrations",
			Message: "at least one integration must be defined",
		})
	}
	for _, name := range c.ListIntegrations() {
		integration := c.Integrations[name]
		errors = append(errors, c.validateIntegration(name, &integration)...)
	}

	errors = append(errors, validateProcessing("processing", &c.Processing)...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateEloqua() ValidationErrors {
	var errors ValidationErrors

	if c.Eloqua.Site == "" {
		errors = append(errors, ValidationError{
			Field:   "eloqua.site",
			Message: "site is required",
		})
	}

	if c.Eloqua.Username == "" {
		errors = append(errors, ValidationError{
			Field:   "eloqua.username",
			Message: "username is required",
		})
	}

	if c.Eloqua.Password == "" {
		errors = append(errors, ValidationError{
			Field:   "eloqua.password",
			Message: "password is required",
		})
	}

	if c.Eloqua.LoginURL == "" && c.Eloqua.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "eloqua.base_url",
			Message: "either login_url or base_url is required",
		})
	}

	if c.Eloqua.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "eloqua.timeout_seconds",
			Message: "timeout_seconds cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateStorage() ValidationErrors {
	var errors ValidationErrors

	if c.Storage.Bucket == "" {
		errors = append(errors, ValidationError{
			Field:   "storage.bucket",
			Message: "bucket is required",
		})
	}

	if (c.Storage.AccessKeyID == "") != (c.Storage.SecretAccessKey == "") {
		errors = append(errors, ValidationError{
			Field:   "storage.access_key_id",
			Message: "access_key_id and secret_access_key must be set together",
		})
	}

	return errors
}

func (c *Config) validateDatabase() ValidationErrors {
	var errors ValidationErrors
	db := &c.Database

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "database.host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "database.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   "database.user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "database.database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "database.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	if db.SummaryTable == "" {
		errors = append(errors, ValidationError{
			Field:   "database.summary_table",
			Message: "summary_table is required",
		})
	}

	return errors
}

func (c *Config) validateNotification() ValidationErrors {
	var errors ValidationErrors

	if c.Notification.APIURL == "" {
		errors = append(errors, ValidationError{
			Field:   "notification.api_url",
			Message: "api_url is required when notification is enabled",
		})
	}

	if c.Notification.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "notification.api_key",
			Message: "api_key is required when notification is enabled",
		})
	}

	if c.Notification.From == "" {
		errors = append(errors, ValidationError{
			Field:   "notification.from",
			Message: "from is required when notification is enabled",
		})
	}

	if len(c.Notification.To) == 0 {
		errors = append(errors, ValidationError{
			Field:   "notification.to",
			Message: "at least one recipient is required",
		})
	}

	return errors
}

func (c *Config) validateIntegration(name string, ic *IntegrationConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("integrations.%s", name)

	if ic.Entity != "" && !knownEntities[ic.Entity] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".entity",
			Message: "entity must be 'membership', 'ticket_activity', or 'tickets'",
		})
	}

	// Without a preset every structural field must be spelled out.
	if ic.Entity == "" {
		if ic.FileMarker == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".file_marker",
				Message: "file_marker is required without an entity preset",
			})
		}
		if ic.CustomObjectID <= 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".custom_object_id",
				Message: "custom_object_id is required without an entity preset",
			})
		}
		if ic.KeyField == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".key_field",
				Message: "key_field is required without an entity preset",
			})
		}
		if ic.IdentifierField == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".identifier_field",
				Message: "identifier_field is required without an entity preset",
			})
		}
		if len(ic.Fields) == 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".fields",
				Message: "fields are required without an entity preset",
			})
		}
		if len(ic.Mapping) == 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".mapping",
				Message: "mapping is required without an entity preset",
			})
		}
	}

	if ic.CustomObjectID < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".custom_object_id",
			Message: "custom_object_id cannot be negative",
		})
	}

	seen := make(map[string]bool, len(ic.Mapping))
	for i, m := range ic.Mapping {
		mPrefix := fmt.Sprintf("%s.mapping[%d]", prefix, i)
		if m.Source == "" {
			errors = append(errors, ValidationError{
				Field:   mPrefix + ".source",
				Message: "source is required",
			})
		}
		if m.Column == "" {
			errors = append(errors, ValidationError{
				Field:   mPrefix + ".column",
				Message: "column is required",
			})
		} else if seen[m.Column] {
			errors = append(errors, ValidationError{
				Field:   mPrefix + ".column",
				Message: fmt.Sprintf("duplicate column %q", m.Column),
			})
		}
		seen[m.Column] = true
		if m.FieldID <= 0 {
			errors = append(errors, ValidationError{
				Field:   mPrefix + ".field_id",
				Message: "field_id must be positive",
			})
		}
	}

	if ic.LinkContacts.Enabled && ic.LinkContacts.SourceField == "" && ic.Entity == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".link_contacts.source_field",
			Message: "source_field is required when contact linking is enabled",
		})
	}

	if ic.Processing != nil {
		errors = append(errors, validateProcessingOverride(prefix+".processing", ic.Processing)...)
	}

	return errors
}

func validateProcessing(prefix string, p *ProcessingConfig) ValidationErrors {
	var errors ValidationErrors

	if p.PageSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".page_size",
			Message: "page_size must be positive",
		})
	}

	if p.BatchSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".batch_size",
			Message: "batch_size must be positive",
		})
	}

	if p.MaxAttempts <= 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_attempts",
			Message: "max_attempts must be positive",
		})
	}

	if p.MaxPolls <= 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_polls",
			Message: "max_polls must be positive",
		})
	}

	if p.ImportAttempts <= 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".import_attempts",
			Message: "import_attempts must be positive",
		})
	}

	errors = append(errors, validateProcessingOverride(prefix, p)...)
	return errors
}

// validateProcessingOverride checks values that are invalid even in a
// partial per-integration override.
func validateProcessingOverride(prefix string, p *ProcessingConfig) ValidationErrors {
	var errors ValidationErrors

	if p.PageSize < 0 || p.BatchSize < 0 || p.MaxAttempts < 0 || p.MaxPolls < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix,
			Message: "page_size, batch_size, max_attempts and max_polls cannot be negative",
		})
	}

	if p.RetryDelaySeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".retry_delay_seconds",
			Message: "retry_delay_seconds cannot be negative",
		})
	}

	if p.ImportAttempts < 0 || p.ImportRetryDelaySeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".import_attempts",
			Message: "import_attempts and import_retry_delay_seconds cannot be negative",
		})
	}

	if p.PollIntervalSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".poll_interval_seconds",
			Message: "poll_interval_seconds cannot be negative",
		})
	}

	validModes := map[string]bool{ModeDryRun: true, ModeLive: true, "": true}
	if !validModes[p.Mode] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".mode",
			Message: "mode must be 'dry_run' or 'live'",
		})
	}

	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			errors = append(errors, ValidationError{
				Field:   prefix + ".timezone",
				Message: fmt.Sprintf("unknown timezone %q", p.Timezone),
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
