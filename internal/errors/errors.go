package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingFile  ErrorType = "MISSING_FILE"
	ErrTypeSchema       ErrorType = "SCHEMA"
	ErrTypeDuplicateKey ErrorType = "DUPLICATE_KEY"
	ErrTypeParsing      ErrorType = "PARSING"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeConfig       ErrorType = "CONFIG"
)

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

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper functions for common error types

// NewMissingFileError creates an error for a required input file that does
// not exist. The attempted path is carried in both the message and context.
func NewMissingFileError(path string) *AppError {
	return NewAppError(ErrTypeMissingFile, fmt.Sprintf("input file not found: %s", path), nil).
		WithContext("path", path)
}

// NewSchemaError creates an error for a table whose columns do not match
// the expected schema (absent column, wrong type, missing key value).
func NewSchemaError(table, column, reason string) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("table %s: column %s %s", table, column, reason), nil).
		WithContext("table", table).
		WithContext("column", column)
}

// NewDuplicateKeyError creates an error for a feature table that holds more
// than one row for a single client, which would multiply rows on merge.
func NewDuplicateKeyError(table string, key int64, rows int) *AppError {
	return NewAppError(ErrTypeDuplicateKey,
		fmt.Sprintf("feature table %s: client %d appears in %d rows", table, key, rows), nil).
		WithContext("table", table).
		WithContext("key", key)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
