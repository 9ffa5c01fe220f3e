package synkflow

import (
	"errors"
	"fmt"
	"time"
)

// ErrAborted is the distinguished cancellation error. Streaming executions
// that observe a cancelled context reject their future with an error wrapping
// ErrAborted, which flows through the standard rejection path.
var ErrAborted = errors.New("execution aborted")

// ErrorCategory classifies errors by where in the engine they originate.
type ErrorCategory string

const (
	// CategoryConfiguration covers errors fatal to a chain before any
	// execution is attempted: an empty pipeline scheduled, a missing
	// per-step configuration callback.
	CategoryConfiguration ErrorCategory = "configuration"

	// CategoryParse covers malformed line-delimited JSON and missing
	// expected fields. Parse errors are never silently skipped.
	CategoryParse ErrorCategory = "parse"

	// CategoryExecution covers prompt executor failures: network or model
	// errors, explicit rejections, cancellation.
	CategoryExecution ErrorCategory = "execution"
)

// CategorizedError is an error that reports its origin category.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool           // true only for transient execution errors
	RetryAfter() time.Duration // suggested retry delay from server, 0 if not available
}

// ConfigError reports a configuration problem fatal to the current chain.
type ConfigError struct {
	Msg   string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Category returns CategoryConfiguration.
func (e *ConfigError) Category() ErrorCategory { return CategoryConfiguration }

// Retryable always returns false for configuration errors.
func (e *ConfigError) Retryable() bool { return false }

// RetryAfter always returns 0 for configuration errors.
func (e *ConfigError) RetryAfter() time.Duration { return 0 }

// ParseError reports a malformed JSON line or a missing expected field.
// Line is the 1-based physical line number, or 0 when not applicable.
type ParseError struct {
	Line  int
	Msg   string
	Cause error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Category returns CategoryParse.
func (e *ParseError) Category() ErrorCategory { return CategoryParse }

// Retryable always returns false for parse errors.
func (e *ParseError) Retryable() bool { return false }

// RetryAfter always returns 0 for parse errors.
func (e *ParseError) RetryAfter() time.Duration { return 0 }

// ExecError reports a prompt execution failure.
type ExecError struct {
	Msg        string
	Code       int           // HTTP status code, 0 if not applicable
	Transient  bool          // true when the operation may be retried
	RetryDelay time.Duration // server-suggested retry delay, 0 if none
	Cause      error
}

func (e *ExecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *ExecError) Unwrap() error { return e.Cause }

// Category returns CategoryExecution.
func (e *ExecError) Category() ErrorCategory { return CategoryExecution }

// Retryable returns true when the error is transient.
func (e *ExecError) Retryable() bool { return e.Transient }

// RetryAfter returns the server-suggested retry delay, or 0 if none.
func (e *ExecError) RetryAfter() time.Duration { return e.RetryDelay }

// StatusCode returns the HTTP status code, or 0 if not applicable.
func (e *ExecError) StatusCode() int { return e.Code }

// NewTransientExecError creates an execution error that can be retried.
func NewTransientExecError(msg string, statusCode int, cause error) *ExecError {
	return &ExecError{Msg: msg, Code: statusCode, Transient: true, Cause: cause}
}

// NewPermanentExecError creates an execution error that must not be retried.
func NewPermanentExecError(msg string, statusCode int, cause error) *ExecError {
	return &ExecError{Msg: msg, Code: statusCode, Cause: cause}
}

// Abort wraps cause into an execution error carrying ErrAborted, so that
// errors.Is(err, ErrAborted) holds downstream.
func Abort(cause error) error {
	return &ExecError{Msg: ErrAborted.Error(), Cause: fmt.Errorf("%w: %w", ErrAborted, cause)}
}

// IsConfiguration returns true if the error is categorized as configuration.
func IsConfiguration(err error) bool { return categoryOf(err) == CategoryConfiguration }

// IsParse returns true if the error is categorized as parse.
func IsParse(err error) bool { return categoryOf(err) == CategoryParse }

// IsExecution returns true if the error is categorized as execution.
func IsExecution(err error) bool { return categoryOf(err) == CategoryExecution }

// IsTransient returns true if the error or any wrapped error reports itself
// as retryable.
func IsTransient(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Retryable()
	}
	return false
}

// IsAborted returns true if the error stems from cancellation.
func IsAborted(err error) bool { return errors.Is(err, ErrAborted) }

// RetryAfterOf returns the server-suggested retry delay carried by a
// categorized error, or 0.
func RetryAfterOf(err error) time.Duration {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

func categoryOf(err error) ErrorCategory {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category()
	}
	return ""
}
