package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewValidationError("file type not allowed", nil)
	assert.Equal(t, "validation: file type not allowed", err.Error())

	wrapped := NewIOError("save failed", errors.New("disk full"))
	assert.Equal(t, "io: save failed (caused by: disk full)", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "disk full")
}

func TestAppErrorIsMatchesOnType(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NewOCRError("engine crashed", nil))

	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeOCR}))
	assert.False(t, errors.Is(err, &AppError{Type: ErrorTypeConversion}))
}

func TestWithContext(t *testing.T) {
	err := NewConversionError("render failed", nil).
		WithContext("source", "pdf").
		WithContext("target", "docx")

	assert.Equal(t, "pdf", err.Context["source"])
	assert.Equal(t, "docx", err.Context["target"])
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeDisabled, GetErrorType(NewDisabledError("OCR is disabled")))
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(NewNotFoundError("output missing", nil)))

	// wrapped AppErrors keep their type through errors.As
	wrapped := fmt.Errorf("outer: %w", NewUnsupportedError("no route", nil))
	assert.Equal(t, ErrorTypeUnsupported, GetErrorType(wrapped))
}

func TestClassifyPlainErrors(t *testing.T) {
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(context.DeadlineExceeded))
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(errors.New("open x: no such file or directory")))
	assert.Equal(t, ErrorTypeNetwork, GetErrorType(errors.New("connection refused")))
	assert.Equal(t, ErrorTypeSystem, GetErrorType(errors.New("something odd")))
}

func TestWrapErrorPreservesAppErrorType(t *testing.T) {
	inner := NewValidationError("empty file", nil)

	wrapped := WrapError(inner, "", "upload rejected")
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrorTypeValidation, wrapped.Type)
	assert.Contains(t, wrapped.Message, "upload rejected")

	assert.Nil(t, WrapError(nil, ErrorTypeIO, "ignored"))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewValidationError("bad input", nil)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewUnsupportedError("no route", nil)))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NewNotFoundError("gone", nil)))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(NewDisabledError("off")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(NewSystemError("boom", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
