// Package utils provides the logging and error handling utilities shared by
// the verification tool.
package utils

import (
	"fmt"
	"time"
)

// ErrorCode categorizes where in the verification pass a fault occurred. The
// codes are diagnostic only: every monitored fault is handled on the same
// path regardless of kind.
type ErrorCode string

const (
	ErrCodeBrowserFailed     ErrorCode = "BROWSER_FAILED"
	ErrCodeNavigationFailed  ErrorCode = "NAVIGATION_FAILED"
	ErrCodeRenderQueryFailed ErrorCode = "RENDER_QUERY_FAILED"
	ErrCodeScreenshotFailed  ErrorCode = "SCREENSHOT_FAILED"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// StructuredError carries an error code alongside the message and cause.
type StructuredError struct {
	Code      ErrorCode
	Message   string
	Cause     error
	Timestamp time.Time
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target error code.
func (e *StructuredError) Is(target error) bool {
	if se, ok := target.(*StructuredError); ok {
		return e.Code == se.Code
	}
	return false
}

// NewError creates a structured error without a cause.
func NewError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WrapError wraps an existing error in a structured error.
func WrapError(err error, code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:      code,
		Message:   message,
		Cause:     err,
		Timestamp: time.Now(),
	}
}
