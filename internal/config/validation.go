package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/sondelabs/querywatch/internal/severity"
)

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

// Validate checks the configuration for valid values. It returns every
// problem at once so a broken file is fixed in one round trip.
func (c *Config) Validate() error {
	var errors ValidationErrors

	knownKinds := make(map[string]bool)
	for _, k := range severity.Kinds() {
		knownKinds[k] = true
	}

	for kind, a := range c.Analyzers {
		if !knownKinds[kind] {
			errors = append(errors, ValidationError{
				Field:   "analyzers." + kind,
				Message: "unknown analyzer kind",
			})
		}
		for name, value := range a.Thresholds {
			field := fmt.Sprintf("analyzers.%s.thresholds.%s", kind, name)
			if value < 0 {
				errors = append(errors, ValidationError{
					Field:   field,
					Message: "threshold must not be negative",
				})
			}
			if math.IsNaN(value) || math.IsInf(value, 0) {
				errors = append(errors, ValidationError{
					Field:   field,
					Message: "threshold must be a finite number",
				})
			}
		}
	}

	for i, f := range c.SensitiveFields {
		if strings.TrimSpace(f) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("sensitive_fields[%d]", i),
				Message: "field name must not be empty",
			})
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "":
	default:
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}
	switch c.Logging.Format {
	case "text", "json", "":
	default:
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q", c.Logging.Format),
		})
	}

	if c.Diagnostic.DSN != "" {
		switch c.Diagnostic.Driver {
		case "mysql", "sqlite":
		default:
			errors = append(errors, ValidationError{
				Field:   "diagnostic.driver",
				Message: fmt.Sprintf("unsupported driver %q", c.Diagnostic.Driver),
			})
		}
	}
	if c.Diagnostic.TimeoutMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "diagnostic.timeout_ms",
			Message: "timeout must not be negative",
		})
	}

	if c.Output.Width < 0 {
		errors = append(errors, ValidationError{
			Field:   "output.width",
			Message: "width must not be negative",
		})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
