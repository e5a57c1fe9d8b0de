package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeIO          ErrorType = "io"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeOCR         ErrorType = "ocr"
	ErrorTypeConversion  ErrorType = "conversion"
	ErrorTypeSystem      ErrorType = "system"
	ErrorTypeUnsupported ErrorType = "unsupported"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeDisabled    ErrorType = "feature_disabled"
)

// AppError represents an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new application error
func NewError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewError(ErrorTypeValidation, message, cause)
}

// NewIOError creates an I/O error
func NewIOError(message string, cause error) *AppError {
	return NewError(ErrorTypeIO, message, cause)
}

// NewOCRError creates an OCR error
func NewOCRError(message string, cause error) *AppError {
	return NewError(ErrorTypeOCR, message, cause)
}

// NewConversionError creates a conversion error
func NewConversionError(message string, cause error) *AppError {
	return NewError(ErrorTypeConversion, message, cause)
}

// NewUnsupportedError creates an unsupported operation error
func NewUnsupportedError(message string, cause error) *AppError {
	return NewError(ErrorTypeUnsupported, message, cause)
}

// NewSystemError creates a system error
func NewSystemError(message string, cause error) *AppError {
	return NewError(ErrorTypeSystem, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string, cause error) *AppError {
	return NewError(ErrorTypeNotFound, message, cause)
}

// NewDisabledError creates an error for an operation whose capability is
// switched off (OCR without an engine, translation without an endpoint).
func NewDisabledError(message string) *AppError {
	return NewError(ErrorTypeDisabled, message, nil)
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the original type unless explicitly overridden
	if appErr, ok := err.(*AppError); ok && errorType == "" {
		return &AppError{
			Type:    appErr.Type,
			Message: message + ": " + appErr.Message,
			Cause:   appErr.Cause,
			Context: appErr.Context,
		}
	}

	if errorType == "" {
		errorType = classifyError(err)
	}

	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// classifyError automatically classifies an error based on its content
func classifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSystem
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return ErrorTypeTimeout
	case strings.Contains(errStr, "no such file") || strings.Contains(errStr, "not found"):
		return ErrorTypeNotFound
	case strings.Contains(errStr, "network") || strings.Contains(errStr, "connection"):
		return ErrorTypeNetwork
	case strings.Contains(errStr, "ocr") || strings.Contains(errStr, "recognition"):
		return ErrorTypeOCR
	case strings.Contains(errStr, "convert") || strings.Contains(errStr, "parsing"):
		return ErrorTypeConversion
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "bad"):
		return ErrorTypeValidation
	default:
		return ErrorTypeSystem
	}
}

// GetErrorType extracts the error type from an error
func GetErrorType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return classifyError(err)
}

// HTTPStatus maps an error to the HTTP status the transport layer should
// return. Validation and unsupported-pair failures are client errors; the
// rest surface as server errors with the cause preserved in logs.
func HTTPStatus(err error) int {
	switch GetErrorType(err) {
	case ErrorTypeValidation, ErrorTypeUnsupported:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeDisabled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
