// Package util provides logging helpers and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	ErrTransport     = errors.New("transport failure")
	ErrAPI           = errors.New("api request failed")
	ErrInvalidRow    = errors.New("invalid csv row")
	ErrMissingToken  = errors.New("api token not set")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// TransportError is a request that never produced an HTTP response
// (DNS, connect, TLS, timeout). Drivers treat it as unrecoverable.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// NewTransportError creates a transport error
func NewTransportError(method, url string, err error) *TransportError {
	return &TransportError{Method: method, URL: url, Err: err}
}

// APIError is a non-success response for a single object
type APIError struct {
	Kind   string
	Name   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %q: status %d", e.Kind, e.Name, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// NewAPIError creates an API error
func NewAPIError(kind, name string, status int, body string) *APIError {
	return &APIError{Kind: kind, Name: name, Status: status, Body: body}
}

// RowError ties a failure to the CSV line that caused it
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewRowError creates a row error
func NewRowError(line int, err error) *RowError {
	return &RowError{Line: line, Err: err}
}

// FieldError is a cell that could not be converted to the type its JSON
// field requires.
type FieldError struct {
	Column string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("column %s: %q %s", e.Column, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidRow
}

// NewFieldError creates a field error
func NewFieldError(column, value, reason string) *FieldError {
	return &FieldError{Column: column, Value: value, Reason: reason}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid configuration: " + e.Errors[0]
	}
	return fmt.Sprintf("invalid configuration:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
