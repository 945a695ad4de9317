package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGitStatusMismatch is wrapped by InvariantViolation when 'git status'
// disagrees with the dependency infos reported as used.
var ErrGitStatusMismatch = errors.New("'git status' does not match DependencyInfo information")

// ConfigurationError reports a missing or invalid required setting. It is
// raised at construction time and never retried.
type ConfigurationError struct {
	Field   string
	Message string
}

// NewConfigurationError creates a ConfigurationError for the given field.
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %q: %s", e.Field, e.Message)
}

// AmbiguousMatchError reports that a lookup which must match exactly one
// candidate matched zero or several.
type AmbiguousMatchError struct {
	What    string
	Key     string
	Matches []string
	Total   int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf(
		"expected exactly 1 %s matching %s, but found %d/%d: '%s'",
		e.What, e.Key, len(e.Matches), e.Total, strings.Join(e.Matches, ", "),
	)
}

// ProcessFailure reports a non-zero exit code of an external command.
type ProcessFailure struct {
	CommandLine string
	ExitCode    int
	Stdout      string
	Stderr      string
	// Suppressed is set when the command carried secrets; the command line
	// and captured output are then left out of Error().
	Suppressed bool
}

func (e *ProcessFailure) Error() string {
	if e.Suppressed {
		return fmt.Sprintf("command failed with exit code %d (output suppressed)", e.ExitCode)
	}

	message := fmt.Sprintf("command '%s' failed with exit code %d", e.CommandLine, e.ExitCode)
	if strings.TrimSpace(e.Stdout) != "" {
		message += "\nstdout:\n" + e.Stdout
	}
	if strings.TrimSpace(e.Stderr) != "" {
		message += "\nstderr:\n" + e.Stderr
	}
	return message
}

// HTTPFailure reports a non-2xx response of a remote API.
type HTTPFailure struct {
	Operation  string
	StatusCode int
	Content    string
	Err        error
}

func (e *HTTPFailure) Error() string {
	message := fmt.Sprintf("%s: HTTP call unsuccessful. Response status code: %d", e.Operation, e.StatusCode)
	if strings.TrimSpace(e.Content) != "" {
		message += fmt.Sprintf(" with content: '%s'", e.Content)
	}
	return message
}

func (e *HTTPFailure) Unwrap() error { return e.Err }

// TimeoutError reports an external call (process or HTTP) that did not
// finish within its deadline.
type TimeoutError struct {
	Operation string
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out: %v", e.Operation, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// InvariantViolation halts a run before any push or pull request happens.
type InvariantViolation struct {
	Err    error
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *InvariantViolation) Unwrap() error { return e.Err }
