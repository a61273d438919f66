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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrPermission     ErrorCode = "PERMISSION"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Metadata errors
	ErrMetadataParse   ErrorCode = "METADATA_PARSE"
	ErrMetadataInvalid ErrorCode = "METADATA_INVALID"

	// Platform errors
	ErrUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrFolderUnresolved    ErrorCode = "FOLDER_UNRESOLVED"
	ErrExecutableMissing   ErrorCode = "EXECUTABLE_MISSING"
	ErrElevation           ErrorCode = "ELEVATION"
	ErrMenuFile            ErrorCode = "MENU_FILE"
	ErrRegistry            ErrorCode = "REGISTRY"
	ErrCommandFailed       ErrorCode = "COMMAND_FAILED"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
	ErrRemove     ErrorCode = "REMOVE"
)

// MenuinstError represents a structured error with code and details
type MenuinstError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MenuinstError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MenuinstError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *MenuinstError) Is(target error) bool {
	var targetErr *MenuinstError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MenuinstError with the given code and message
func New(code ErrorCode, message string) *MenuinstError {
	return &MenuinstError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MenuinstError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MenuinstError {
	return &MenuinstError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MenuinstError
func Wrap(err error, code ErrorCode, message string) *MenuinstError {
	if err == nil {
		return nil
	}
	return &MenuinstError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MenuinstError {
	if err == nil {
		return nil
	}
	return &MenuinstError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *MenuinstError) WithDetail(key string, value interface{}) *MenuinstError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *MenuinstError) WithDetails(details map[string]interface{}) *MenuinstError {
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
	var menuErr *MenuinstError
	if errors.As(err, &menuErr) {
		return menuErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a MenuinstError
func GetErrorCode(err error) ErrorCode {
	var menuErr *MenuinstError
	if errors.As(err, &menuErr) {
		return menuErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a MenuinstError
func GetErrorDetails(err error) map[string]interface{} {
	var menuErr *MenuinstError
	if errors.As(err, &menuErr) {
		return menuErr.Details
	}
	return nil
}
