package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Protocol errors, recovered locally and never surfaced to scripts
	ErrProtocolDesync      ErrorCode = "PROTOCOL_DESYNC"
	ErrMalformedSubneg     ErrorCode = "MALFORMED_SUBNEGOTIATION"
	ErrConnectionLost      ErrorCode = "CONNECTION_LOST"
	ErrConnectionRefused   ErrorCode = "CONNECTION_REFUSED"
	ErrSessionDisconnected ErrorCode = "SESSION_DISCONNECTED"

	// Script errors, surfaced to the user but never fatal to the session
	ErrInvalidCodeBlock ErrorCode = "INVALID_CODE_BLOCK"
	ErrPatternCompile   ErrorCode = "PATTERN_COMPILE"

	// Command execution errors
	ErrCommandTimeout ErrorCode = "COMMAND_TIMEOUT"
	ErrRetryExhausted ErrorCode = "RETRY_EXHAUSTED"

	// Object table errors
	ErrObjectNotFound ErrorCode = "OBJECT_NOT_FOUND"
	ErrObjectInvalid  ErrorCode = "OBJECT_INVALID"

	// Module loading errors
	ErrModuleLoad  ErrorCode = "MODULE_LOAD"
	ErrModuleParse ErrorCode = "MODULE_PARSE"
)

// MudError represents a structured error with code and details
type MudError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MudError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MudError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *MudError) Is(target error) bool {
	var targetErr *MudError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MudError with the given code and message
func New(code ErrorCode, message string) *MudError {
	return &MudError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MudError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MudError {
	return &MudError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MudError
func Wrap(err error, code ErrorCode, message string) *MudError {
	if err == nil {
		return nil
	}
	return &MudError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MudError {
	if err == nil {
		return nil
	}
	return &MudError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *MudError) WithDetail(key string, value interface{}) *MudError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *MudError) WithDetails(details map[string]interface{}) *MudError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var mudErr *MudError
	if errors.As(err, &mudErr) {
		return mudErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a MudError
func GetErrorCode(err error) ErrorCode {
	var mudErr *MudError
	if errors.As(err, &mudErr) {
		return mudErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a MudError
func GetErrorDetails(err error) map[string]interface{} {
	var mudErr *MudError
	if errors.As(err, &mudErr) {
		return mudErr.Details
	}
	return nil
}
