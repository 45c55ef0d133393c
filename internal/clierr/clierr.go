// Package clierr defines structured error types shared by the task store,
// the aggregation engine and the CLI. Errors carry a machine-readable code,
// a human-readable message, and optional details for JSON consumers.
package clierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error code constants. Uppercase, underscore-separated, stable across minor versions.
const (
	ValidationFailed       = "VALIDATION_FAILED"
	InvalidTransition      = "INVALID_TRANSITION"
	InvalidFilter          = "INVALID_FILTER"
	InvalidAggregation     = "INVALID_AGGREGATION"
	TaskNotFound           = "TASK_NOT_FOUND"
	SheetNotFound          = "SHEET_NOT_FOUND"
	UnsupportedFile        = "UNSUPPORTED_FILE"
	WorkspaceNotFound      = "WORKSPACE_NOT_FOUND"
	WorkspaceAlreadyExists = "WORKSPACE_ALREADY_EXISTS"
	InvalidTaskID          = "INVALID_TASK_ID"
	InvalidGroupBy         = "INVALID_GROUP_BY"
	NothingToPick          = "NOTHING_TO_PICK"
	ConfirmationReq        = "CONFIRMATION_REQUIRED"
	InternalError          = "INTERNAL_ERROR"
)

// Error represents a structured error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// HasCode reports whether err, or any error it wraps, is an *Error with code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// SilentError signals an exit code without additional output.
// Used by batch operations where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
