package errors

import (
	"fmt"
	"strings"
)

// Error types for the flowgen system
type ErrorType string

const (
	ErrorTypeParse  ErrorType = "parse"
	ErrorTypeSelect ErrorType = "select"
	ErrorTypeFile   ErrorType = "file"
	ErrorTypeConfig ErrorType = "config"
)

// ParseError represents a failure to obtain a syntax tree for a file. Graph
// construction itself never fails; this covers the parser collaborator
// (unknown language, grammar refused the buffer).
type ParseError struct {
	Type       ErrorType
	Path       string
	Language   string
	Underlying error
}

// NewParseError creates a new parse error with file context.
func NewParseError(path, language string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		Path:       path,
		Language:   language,
		Underlying: err,
	}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse failed for %s (%s): %v", e.Path, e.Language, e.Underlying)
	}
	return fmt.Sprintf("parse failed (%s): %v", e.Language, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// SelectError reports that a function selector matched nothing. Library
// callers get a placeholder diagram instead; the CLI surfaces this in strict
// mode, with close-name suggestions when any exist.
type SelectError struct {
	Type        ErrorType
	Selector    string
	Suggestions []string
}

// NewSelectError creates a new selector error.
func NewSelectError(selector string, suggestions []string) *SelectError {
	return &SelectError{
		Type:        ErrorTypeSelect,
		Selector:    selector,
		Suggestions: suggestions,
	}
}

// Error implements the error interface.
func (e *SelectError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no function matched selector %q", e.Selector)
	}
	return fmt.Sprintf("no function matched selector %q (did you mean %s?)",
		e.Selector, strings.Join(e.Suggestions, ", "))
}

// FileError represents a file-related error.
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
}

// NewFileError creates a new file error.
func NewFileError(op, path string, err error) *FileError {
	return &FileError{
		Type:       ErrorTypeFile,
		Path:       path,
		Operation:  op,
		Underlying: err,
	}
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
}

// NewConfigError creates a new config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
	}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}
