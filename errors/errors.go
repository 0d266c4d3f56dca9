// Package errors provides error types and handling for transfer operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a transfer operation error with context about the
// operation that failed. It wraps the underlying error with the destination
// key and part number (when applicable) for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "stage", "uploadPart", "finalize")
	Op string

	// Key is the destination object key (if applicable)
	Key string

	// Part is the 1-based part number (0 when not part-scoped)
	Part int32

	// Err is the underlying error from the SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Key != "" && e.Part > 0 {
		return fmt.Sprintf("transfer.%s %s part %d: %v", e.Op, e.Key, e.Part, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("transfer.%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("transfer.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithKey adds destination key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithPart adds part number context to an existing error.
func (e *Error) WithPart(part int32) *Error {
	e.Part = part
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// Sentinel errors for transfer failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrSourceRead indicates a failure to obtain bytes from the origin
	ErrSourceRead = errors.New("transfer: source read failed")

	// ErrSinkInit indicates the destination upload session could not be opened
	ErrSinkInit = errors.New("transfer: sink init failed")

	// ErrPartUpload indicates a part upload failed after exhausting retries
	ErrPartUpload = errors.New("transfer: part upload failed")

	// ErrIncompleteParts indicates finalize was called with a gap in part numbers
	ErrIncompleteParts = errors.New("transfer: incomplete part set")

	// ErrCancelled indicates the caller requested cancellation
	ErrCancelled = errors.New("transfer: cancelled")

	// ErrTransferFailed is the aggregated terminal failure for a session
	ErrTransferFailed = errors.New("transfer: failed")

	// ErrStagingFatal indicates a non-retryable staging failure (disk full, permissions)
	ErrStagingFatal = errors.New("transfer: staging failed")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("transfer: invalid input")

	// ErrInvalidObjectKey indicates that the destination key is invalid
	ErrInvalidObjectKey = errors.New("transfer: invalid object key")

	// ErrInvalidState indicates a session state transition that is not allowed
	ErrInvalidState = errors.New("transfer: invalid state transition")

	// ErrSessionNotFound indicates the requested session does not exist
	ErrSessionNotFound = errors.New("transfer: session not found")
)

// SourceReadError records how far through the source stream the reader got
// before failing. The offset lets callers report the failure point precisely.
type SourceReadError struct {
	// Offset is the byte offset reached before the failure
	Offset int64

	// Err is the underlying read error
	Err error
}

// Error implements the error interface.
func (e *SourceReadError) Error() string {
	return fmt.Sprintf("transfer: source read failed at offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches ErrSourceRead.
func (e *SourceReadError) Is(target error) bool {
	return target == ErrSourceRead
}

// NewSourceReadError creates a SourceReadError at the given offset.
func NewSourceReadError(offset int64, err error) *SourceReadError {
	return &SourceReadError{Offset: offset, Err: err}
}

// IsCancelled checks if an error indicates the transfer was cancelled.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsSinkInit checks if an error indicates the upload session could not be opened.
func IsSinkInit(err error) bool {
	return errors.Is(err, ErrSinkInit)
}

// IsIncompleteParts checks if an error indicates a gap in the finalized part set.
func IsIncompleteParts(err error) bool {
	return errors.Is(err, ErrIncompleteParts)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
