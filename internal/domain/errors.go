package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrInvalidInput = errors.New("invalid input")

	// Resource errors
	ErrNoValidName = errors.New("no valid file name could be derived")
	ErrUnexpected  = errors.New("unexpected extraction error")
)

// FetchError is returned when a GET request fails at the transport level or
// the server answers with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int // zero for transport failures
	Err        error
}

// Error returns the error message
func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s: failed", e.URL)
	}
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a fetch error for a transport failure.
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// NewStatusError creates a fetch error for an unsuccessful HTTP status.
func NewStatusError(url string, statusCode int) *FetchError {
	return &FetchError{URL: url, StatusCode: statusCode}
}

// IsFetchError returns true if err is or wraps a FetchError
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// FilesystemError is returned when the output directory or a file inside it
// cannot be created or written.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

// Error returns the error message
func (e *FilesystemError) Error() string {
	if e.Err != nil {
		return e.Op + " " + e.Path + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path
}

// Unwrap returns the underlying error
func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// NewFilesystemError creates a new filesystem error
func NewFilesystemError(op, path string, err error) *FilesystemError {
	return &FilesystemError{Op: op, Path: path, Err: err}
}

// IsFilesystemError returns true if err is or wraps a FilesystemError
func IsFilesystemError(err error) bool {
	var fe *FilesystemError
	return errors.As(err, &fe)
}

// SkippableError represents an error that can be logged and skipped.
// Processing can continue with the next resource when this error occurs.
type SkippableError struct {
	Err     error
	Context string
}

// Error returns the error message
func (e *SkippableError) Error() string {
	if e.Context != "" {
		if e.Err != nil {
			return e.Context + ": " + e.Err.Error()
		}
		return e.Context
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "skippable error"
}

// Unwrap returns the underlying error
func (e *SkippableError) Unwrap() error {
	return e.Err
}

// NewSkippableError creates a new skippable error
func NewSkippableError(err error, context string) *SkippableError {
	return &SkippableError{Err: err, Context: context}
}

// IsSkippable returns true if the error can be skipped
func IsSkippable(err error) bool {
	var se *SkippableError
	return errors.As(err, &se)
}
