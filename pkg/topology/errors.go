package topology

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a single problem found while building a topology.
type ValidationError struct {
	Subject string // Stage or edge identifier
	Err     error  // Sentinel from the domain package
	Detail  string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Subject, e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConfigError aggregates every validation failure of a topology.
type ConfigError struct {
	Errors []error
}

func (e *ConfigError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid topology: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid topology: %d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual failures to errors.Is / errors.As.
func (e *ConfigError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is a ConfigError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Errors
	}
	return nil
}
