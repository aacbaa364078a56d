// Package errors defines the typed failures of an extraction run.
//
// Configuration failures are fatal and surface before any file is read.
// File and parse failures are per-file: the pipeline records them and moves
// on to the next file.
package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
)

// ErrorType classifies a failure for reporting.
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeFileAccess ErrorType = "file_access"
	ErrorTypePermission ErrorType = "permission"
)

// ConfigError reports a malformed or missing configuration value.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err}
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config error for %s: %v", e.Field, e.Underlying)
	}
	return fmt.Sprintf("config error for %s (value %q): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// ParseError reports a file whose syntax tree could not be produced.
// Line and Column are 1-based and zero when unknown.
type ParseError struct {
	Path       string
	Line       int
	Column     int
	Underlying error
}

// NewParseError creates a new parse error
func NewParseError(path string, line, column int, err error) *ParseError {
	return &ParseError{Path: path, Line: line, Column: column, Underlying: err}
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Underlying)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Underlying)
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// FileError reports a selected file or directory that could not be read.
type FileError struct {
	Type       ErrorType
	Path       string
	Op         string
	Underlying error
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileAccess
	if stderrors.Is(err, fs.ErrPermission) {
		errorType = ErrorTypePermission
	}
	return &FileError{Type: errorType, Path: path, Op: op, Underlying: err}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Op, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping nil entries.
// It returns nil when nothing is left.
func NewMultiError(errs []error) error {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// IsConfig reports whether err is, or wraps, a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return stderrors.As(err, &ce)
}

// IsPerFile reports whether err only concerns a single file and must not stop a run.
func IsPerFile(err error) bool {
	var pe *ParseError
	var fe *FileError
	return stderrors.As(err, &pe) || stderrors.As(err, &fe)
}
