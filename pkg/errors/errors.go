// Package errors provides the unified error type and factory functions for
// the ComplyTrack platform.  Every layer (domain, application, infrastructure,
// interfaces) uses AppError as the single carrier of structured failure
// information so that logging, metrics, and HTTP mapping stay consistent.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the canonical platform error.  It satisfies the standard error
// interface and supports Go 1.13+ wrapping, so errors.Is / errors.As /
// errors.Unwrap traverse the full chain across layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeFrequencyConfigMissing, "quarterly day-of-month not set")
//	return errors.Wrap(dbErr, errors.ErrCodeDatabaseError, "upsert failed")
type AppError struct {
	// Code uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description.
	Message string

	// Detail carries supplementary context (entity IDs, period strings)
	// that aids diagnosis without cluttering the message.
	Detail string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, enabling errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy with Detail set.  Safe on nil receivers.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy with Cause set.  Safe on nil receivers.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Factories
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf constructs a fresh AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an AppError that wraps err.  Returns nil when err is nil so
// it can be used inline on call results.  When err is already an *AppError
// and code is ErrCodeInternal, the original code is preserved so cross-layer
// propagation does not lose the domain classification.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == ErrCodeInternal {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var ae *AppError
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError in err's chain,
// or ErrCodeInternal when none is present.  Useful as a single metric label.
func GetCode(err error) ErrorCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeInternal
}

// IsNotFound reports whether err's chain carries a not-found classification.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeNotFound) || IsCode(err, ErrCodeRecordNotFound)
}

// IsValidation reports whether err's chain carries a validation failure,
// including the schedule-configuration variants.
func IsValidation(err error) bool {
	return IsCode(err, ErrCodeValidation) ||
		IsCode(err, ErrCodeBadRequest) ||
		IsCode(err, ErrCodeFrequencyConfigMissing) ||
		IsCode(err, ErrCodeFrequencyConfigInvalid) ||
		IsCode(err, ErrCodePeriodMalformed)
}

// IsConflict reports whether err's chain carries a uniqueness conflict.
// The legacy-index variant is deliberately excluded: it requires an index
// migration, not an idempotent retry, and callers must not conflate the two.
func IsConflict(err error) bool {
	return IsCode(err, ErrCodeConflict) || IsCode(err, ErrCodeRecordExists)
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience constructors
// ─────────────────────────────────────────────────────────────────────────────

// NotFound constructs an ErrCodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// InvalidParam constructs an ErrCodeValidation AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// InvalidState constructs an ErrCodeInvalidState AppError.
func InvalidState(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidState, Message: message}
}

// Conflict constructs an ErrCodeConflict AppError.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Internal constructs an ErrCodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}
