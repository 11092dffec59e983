// internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for analysis failures
type ErrorCode string

const (
	// InvalidPortion indicates non-positive servings or serving size
	InvalidPortion ErrorCode = "INVALID_PORTION"
	// UnknownGI indicates the food has no GI and no default is configured
	UnknownGI ErrorCode = "UNKNOWN_GI"
	// NotFound indicates the nutrition lookup had no match
	NotFound ErrorCode = "NOT_FOUND"
	// InvalidInput indicates a malformed request
	InvalidInput ErrorCode = "INVALID_INPUT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// AnalysisError carries a stable code next to the human message
type AnalysisError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrInvalidPortion = &AnalysisError{Code: InvalidPortion, Message: "invalid portion"}
	ErrUnknownGI      = &AnalysisError{Code: UnknownGI, Message: "unknown glycemic index"}
	ErrNotFound       = &AnalysisError{Code: NotFound, Message: "not found"}
	ErrInvalidInput   = &AnalysisError{Code: InvalidInput, Message: "invalid input"}
)

// New creates an AnalysisError
func New(code ErrorCode, message string) *AnalysisError {
	return &AnalysisError{Code: code, Message: message}
}

// Newf creates an AnalysisError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an AnalysisError around an underlying error
func Wrap(code ErrorCode, message string, cause error) *AnalysisError {
	return &AnalysisError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// Is matches any AnalysisError with the same code
func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails adds details to the error
func (e *AnalysisError) WithDetails(details interface{}) *AnalysisError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first AnalysisError in the chain,
// InternalError for anything else and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return InternalError
}
