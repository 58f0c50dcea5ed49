// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors
	ErrNoData     = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrDataFormat = &Error{Code: "DATA_FORMAT", Message: "malformed price data"}

	// Configuration errors, raised when a backtest is constructed
	ErrConfigInvalid    = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing    = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
	ErrInvalidFrequency = &Error{Code: "INVALID_FREQUENCY", Message: "frequency not available"}
	ErrFrequencyTooFine = &Error{Code: "FREQUENCY_TOO_FINE", Message: "rebalancing frequency finer than data frequency"}

	// Validation errors, raised when a result is constructed
	ErrValidation         = &Error{Code: "VALIDATION", Message: "validation failed"}
	ErrMissingField       = &Error{Code: "MISSING_FIELD", Message: "required field missing"}
	ErrLengthMismatch     = &Error{Code: "LENGTH_MISMATCH", Message: "positions and data must share the same length"}
	ErrPositionOutOfRange = &Error{Code: "POSITION_OUT_OF_RANGE", Message: "positions must belong to [-1,1]"}

	// Strategy errors
	ErrStrategyFailed  = &Error{Code: "STRATEGY_FAILED", Message: "strategy failed"}
	ErrUnknownStrategy = &Error{Code: "UNKNOWN_STRATEGY", Message: "strategy not registered"}

	// Reporting errors
	ErrUnknownMetric = &Error{Code: "UNKNOWN_METRIC", Message: "metric not available"}
)
