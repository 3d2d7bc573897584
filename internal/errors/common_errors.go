package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// ErrInsufficientData is returned when the backward walk exhausts its
// lookback budget with zero usable snapshots. It is the only pipeline error
// surfaced to the end user; fetch and load failures for individual dates are
// recovered by continuing the walk.
var ErrInsufficientData = errors.New("no usable open interest snapshots available")

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// FetchError marks a failed snapshot download for one trading date. The
// window walk treats it as "no data for this date" and keeps walking
// backward; it is fatal only when nothing at all can be collected.
type FetchError struct {
	Date  time.Time
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("[%s] snapshot fetch failed for %s: %v", ErrTypeNetwork, e.Date.Format("2006-01-02"), e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewFetchError creates a fetch failure for the given trading date
func NewFetchError(date time.Time, cause error) *FetchError {
	return &FetchError{Date: date, Cause: cause}
}

// LoadError marks a snapshot file that could not be parsed into records.
// Recovery policy is identical to FetchError.
type LoadError struct {
	Date  time.Time
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("[%s] snapshot load failed for %s: %v", ErrTypeParsing, e.Date.Format("2006-01-02"), e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// NewLoadError creates a load failure for the given trading date
func NewLoadError(date time.Time, cause error) *LoadError {
	return &LoadError{Date: date, Cause: cause}
}

// Helper functions for common error types

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
