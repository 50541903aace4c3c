package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "sync.interval")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSync()...)
	errors = append(errors, c.validateStop()...)
	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateSync() []ValidationError {
	var errors []ValidationError

	if c.Sync.Interval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sync.interval",
			Value:   c.Sync.Interval,
			Message: "must be positive",
		})
	}

	if c.Sync.CachedRefreshPeriod < 1 {
		errors = append(errors, ValidationError{
			Field:   "sync.cached_refresh_period",
			Value:   c.Sync.CachedRefreshPeriod,
			Message: "must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateStop() []ValidationError {
	var errors []ValidationError

	if c.Stop.AfterPID < 0 {
		errors = append(errors, ValidationError{
			Field:   "stop.after_pid",
			Value:   c.Stop.AfterPID,
			Message: "must be non-negative (0 = disabled)",
		})
	}

	if strings.TrimSpace(c.Stop.AfterProcess) != c.Stop.AfterProcess {
		errors = append(errors, ValidationError{
			Field:   "stop.after_process",
			Value:   c.Stop.AfterProcess,
			Message: "must not have leading or trailing whitespace",
		})
	}

	return errors
}

func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.Debounce < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce",
			Value:   c.Watch.Debounce,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative (0 = no rotation)",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
