// Package errors provides centralized error definitions and error handling utilities
// for lfslocker. It defines the error taxonomy used across the sync loop, error
// constructors with context wrapping, and classification helpers.
//
// # Error Types
//
//   - EnvironmentError: a local query (git status, git config, rev-parse) failed
//     or produced output that could not be parsed
//   - ProtocolError: the lock registry returned a malformed response
//   - RemoteOperationError: a lock or unlock call failed or was not acknowledged
//   - ConfigurationError: startup preconditions are not met (not a work tree,
//     no identity, invalid config, another instance already running)
//
// All four are fatal. A failed cycle aborts the process instead of acting on a
// partial view of the repository.
//
// # Usage
//
//	err := errors.NewEnvironmentError("git status failed", cause).
//		WithCommand([]string{"git", "status", "--porcelain=1"}).
//		WithOutput(string(output))
//
//	var envErr *errors.EnvironmentError
//	if errors.As(err, &envErr) { ... }
//
//	os.Exit(errors.ExitCode(err))
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityWarning is for errors that might indicate a problem but aren't fatal.
	SeverityWarning Severity = iota
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that must stop the process.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Configuration sentinel errors
var (
	// ErrNotWorkTree indicates the configured path is not inside a git work tree.
	ErrNotWorkTree = New("not inside a git work tree")
	// ErrIdentityUnresolved indicates no lock owner identity could be determined.
	ErrIdentityUnresolved = New("lock owner identity could not be resolved")
	// ErrLFSUnavailable indicates git-lfs is not installed or not on PATH.
	ErrLFSUnavailable = New("git-lfs is not available")
	// ErrAlreadyRunning indicates another lfslocker already owns the repository.
	ErrAlreadyRunning = New("another lfslocker is already running for this repository")
	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = New("invalid configuration")
)

// Registry sentinel errors
var (
	// ErrMalformedResponse indicates the lock registry output was not valid JSON.
	ErrMalformedResponse = New("malformed lock registry response")
	// ErrMissingField indicates a lock record lacked a required field.
	ErrMissingField = New("lock record missing required field")
	// ErrNotAcknowledged indicates a lock/unlock response did not confirm the path.
	ErrNotAcknowledged = New("operation not acknowledged by lock registry")
)

// ErrUnparseableOutput indicates a local query produced output that could not be parsed.
var ErrUnparseableOutput = New("unparseable command output")

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// LockerError is the base interface for all lfslocker errors.
type LockerError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// ExitCode is the process exit status for this error class.
	ExitCode() int
}

// baseError provides common functionality for all error types.
type baseError struct {
	message  string
	cause    error
	severity Severity
	exitCode int
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// ExitCode returns the process exit status for this error.
func (e *baseError) ExitCode() int {
	return e.exitCode
}

// format renders "<kind> [k=v, ...]: message: cause" plus an optional output block.
func (e *baseError) format(kind string, parts []string, output string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if output != "" {
		msg = fmt.Sprintf("%s\noutput: %s", msg, output)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Exit codes per error class.
const (
	ExitGeneric       = 1
	ExitConfiguration = 2
	ExitEnvironment   = 3
	ExitProtocol      = 4
	ExitRemote        = 5
)

// -----------------------------------------------------------------------------
// EnvironmentError
// -----------------------------------------------------------------------------

// EnvironmentError represents a failed or unparseable local query.
//
// Example:
//
//	err := errors.NewEnvironmentError("git status failed", cause).
//		WithRepository("/work/game").
//		WithCommand([]string{"git", "status"})
type EnvironmentError struct {
	baseError
	Repository string
	Command    []string
	Output     string
}

// NewEnvironmentError creates a new EnvironmentError.
func NewEnvironmentError(message string, cause error) *EnvironmentError {
	return &EnvironmentError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityCritical,
			exitCode: ExitEnvironment,
		},
	}
}

// WithRepository adds a repository path to the error context.
func (e *EnvironmentError) WithRepository(path string) *EnvironmentError {
	e.Repository = path
	return e
}

// WithCommand records the command that was invoked.
func (e *EnvironmentError) WithCommand(argv []string) *EnvironmentError {
	e.Command = argv
	return e
}

// WithOutput records the raw command output.
func (e *EnvironmentError) WithOutput(output string) *EnvironmentError {
	e.Output = output
	return e
}

// Error returns the formatted error message.
func (e *EnvironmentError) Error() string {
	var parts []string
	if e.Repository != "" {
		parts = append(parts, fmt.Sprintf("repo=%s", e.Repository))
	}
	if len(e.Command) > 0 {
		parts = append(parts, fmt.Sprintf("cmd=%s", strings.Join(e.Command, " ")))
	}
	return e.format("environment error", parts, e.Output)
}

// Is checks if this error matches the target.
func (e *EnvironmentError) Is(target error) bool {
	_, ok := target.(*EnvironmentError)
	return ok
}

// -----------------------------------------------------------------------------
// ProtocolError
// -----------------------------------------------------------------------------

// ProtocolError represents a malformed lock registry response.
//
// Example:
//
//	err := errors.NewProtocolError("lock record 3", errors.ErrMissingField).WithField("owner.name")
type ProtocolError struct {
	baseError
	Command []string
	Field   string
	Output  string
}

// NewProtocolError creates a new ProtocolError.
func NewProtocolError(message string, cause error) *ProtocolError {
	return &ProtocolError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityCritical,
			exitCode: ExitProtocol,
		},
	}
}

// WithCommand records the registry command that was invoked.
func (e *ProtocolError) WithCommand(argv []string) *ProtocolError {
	e.Command = argv
	return e
}

// WithField names the offending record field.
func (e *ProtocolError) WithField(field string) *ProtocolError {
	e.Field = field
	return e
}

// WithOutput records the raw registry response.
func (e *ProtocolError) WithOutput(output string) *ProtocolError {
	e.Output = output
	return e
}

// Error returns the formatted error message.
func (e *ProtocolError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if len(e.Command) > 0 {
		parts = append(parts, fmt.Sprintf("cmd=%s", strings.Join(e.Command, " ")))
	}
	return e.format("protocol error", parts, e.Output)
}

// Is checks if this error matches the target.
func (e *ProtocolError) Is(target error) bool {
	_, ok := target.(*ProtocolError)
	return ok
}

// -----------------------------------------------------------------------------
// RemoteOperationError
// -----------------------------------------------------------------------------

// RemoteOperationError represents a failed lock or unlock call.
//
// Example:
//
//	err := errors.NewRemoteOperationError("lock", "art/hero.psd", cause)
//	fmt.Println(err) // "remote operation error [op=lock, path=art/hero.psd]: ..."
type RemoteOperationError struct {
	baseError
	Operation string
	Path      string
	Command   []string
	Output    string
}

// NewRemoteOperationError creates a new RemoteOperationError.
func NewRemoteOperationError(operation, path string, cause error) *RemoteOperationError {
	return &RemoteOperationError{
		baseError: baseError{
			message:  fmt.Sprintf("%s failed", operation),
			cause:    cause,
			severity: SeverityCritical,
			exitCode: ExitRemote,
		},
		Operation: operation,
		Path:      path,
	}
}

// WithCommand records the command that was invoked.
func (e *RemoteOperationError) WithCommand(argv []string) *RemoteOperationError {
	e.Command = argv
	return e
}

// WithOutput records the raw command output.
func (e *RemoteOperationError) WithOutput(output string) *RemoteOperationError {
	e.Output = output
	return e
}

// Error returns the formatted error message.
func (e *RemoteOperationError) Error() string {
	var parts []string
	if e.Operation != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Operation))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("remote operation error", parts, e.Output)
}

// Is checks if this error matches the target.
func (e *RemoteOperationError) Is(target error) bool {
	_, ok := target.(*RemoteOperationError)
	return ok
}

// -----------------------------------------------------------------------------
// ConfigurationError
// -----------------------------------------------------------------------------

// ConfigurationError represents a startup precondition failure.
//
// Example:
//
//	err := errors.NewConfigurationError("cannot start", errors.ErrNotWorkTree).WithField("repository.path").WithValue(p)
type ConfigurationError struct {
	baseError
	Field string
	Value any
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityCritical,
			exitCode: ExitConfiguration,
		},
	}
}

// WithField adds a configuration key to the error context.
func (e *ConfigurationError) WithField(field string) *ConfigurationError {
	e.Field = field
	return e
}

// WithValue adds the offending value to the error context.
func (e *ConfigurationError) WithValue(value any) *ConfigurationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ConfigurationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("configuration error", parts, "")
}

// Is checks if this error matches the target.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement LockerError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityWarning
	}

	var lockerErr LockerError
	if As(err, &lockerErr) {
		return lockerErr.Severity()
	}
	return SeverityError
}

// ExitCode maps an error to a process exit status. Nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var lockerErr LockerError
	if As(err, &lockerErr) {
		return lockerErr.ExitCode()
	}
	return ExitGeneric
}

// Wrap wraps an error with additional context message.
// Unlike losing the type, this preserves the LockerError chain for As.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
