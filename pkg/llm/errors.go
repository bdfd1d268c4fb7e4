package llm

import (
	"fmt"
	"strings"
)

// ErrorType classifies an oracle client failure.
type ErrorType string

const (
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeModel    ErrorType = "model"
	ErrorTypeEndpoint ErrorType = "endpoint"
	ErrorTypeTimeout  ErrorType = "timeout"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error is a structured client error with classification.
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface, letting
// the retry package check retryability without importing this one.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured client error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{Type: errType, Message: message, Retryable: retryable, Cause: cause}
}

// ClassifyError categorizes a raw provider error into a structured
// Error so callers get consistent retry behavior across providers.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key"):
		return NewError(ErrorTypeAuth, "authentication failed", false, err)
	case strings.Contains(msg, "404") || strings.Contains(msg, "model"):
		return NewError(ErrorTypeModel, "model not available", false, err)
	case strings.Contains(msg, "429"):
		return NewError(ErrorTypeEndpoint, "rate limited", true, err)
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") || strings.Contains(msg, "503") || strings.Contains(msg, "504"):
		return NewError(ErrorTypeEndpoint, "server error", true, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return NewError(ErrorTypeTimeout, "request timed out", true, err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return NewError(ErrorTypeEndpoint, "endpoint unreachable", true, err)
	default:
		return NewError(ErrorTypeUnknown, "request failed", false, err)
	}
}
