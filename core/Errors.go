package core

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError covers malformed or unknown configuration and bad settings.
// It is raised before any file is analyzed.
type ConfigurationError struct {
	Messages []string
	Err      error
}

func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Messages: []string{fmt.Sprintf(format, args...)}}
}

func (e *ConfigurationError) Error() string {
	msg := "invalid configuration"
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// RuleLoadError means a rule set or rule named by the run policy could not be resolved.
type RuleLoadError struct {
	Message string
}

func (e *RuleLoadError) Error() string {
	return e.Message
}

// RuleExecutionError wraps a failure raised by a rule while it visited one file.
// The scheduler turns it into a notification.
type RuleExecutionError struct {
	RuleID    string
	RuleSetID string
	Path      string
	Cause     error
}

func (e *RuleExecutionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rule '%s:%s' failed: %v", e.RuleSetID, e.RuleID, e.Cause)
	}
	return fmt.Sprintf("rule '%s:%s' failed on %s: %v", e.RuleSetID, e.RuleID, e.Path, e.Cause)
}

func (e *RuleExecutionError) Unwrap() error {
	return e.Cause
}

type ReportWriteError struct {
	ReportID string
	Path     string
	Err      error
}

func (e *ReportWriteError) Error() string {
	return fmt.Sprintf("failed to write report '%s' to %s: %v", e.ReportID, e.Path, e.Err)
}

func (e *ReportWriteError) Unwrap() error {
	return e.Err
}

// PolicyViolationError is returned next to a populated result when too many issues remain.
type PolicyViolationError struct {
	Policy  string
	Count   int
	Allowed int
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("build failed with %d issues (policy %s allows %d)", e.Count, e.Policy, e.Allowed)
}

type ExitCode int

const (
	ExitNormal          ExitCode = 0
	ExitUnexpectedError ExitCode = 1
	ExitPolicyViolation ExitCode = 2
	ExitInvalidConfig   ExitCode = 3
)

// ExitCodeFor maps the outcome of a run to a process exit category.
func ExitCodeFor(err error) ExitCode {
	if err == nil {
		return ExitNormal
	}
	var policyErr *PolicyViolationError
	if errors.As(err, &policyErr) {
		return ExitPolicyViolation
	}
	var configErr *ConfigurationError
	if errors.As(err, &configErr) {
		return ExitInvalidConfig
	}
	var loadErr *RuleLoadError
	if errors.As(err, &loadErr) {
		return ExitInvalidConfig
	}
	return ExitUnexpectedError
}
