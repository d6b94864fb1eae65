package shelfkit

import (
	"errors"
	"fmt"
)

// Common store and mover errors
var (
	ErrNotExist         = errors.New("object does not exist")
	ErrExist            = errors.New("object already exists")
	ErrNoTags           = errors.New("object has no tags")
	ErrChecksumFailed   = errors.New("could not compute checksum")
	ErrChecksumMismatch = errors.New("copy checksum does not match source")
	ErrRenameFailed     = errors.New("rename failed")
	ErrNotSupported     = errors.New("operation not supported")
)

// ErrStopList stops an ObjectLister walk early. It is never surfaced to the
// caller of List.
var ErrStopList = errors.New("stop listing")

// PathError records an error and the operation and object path that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError wraps err with the operation and path that produced it.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// IsNotExist reports whether an error indicates that an object does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsExist reports whether an error indicates that an object already exists
func IsExist(err error) bool {
	return errors.Is(err, ErrExist)
}

// IsChecksumMismatch reports whether an error indicates a failed copy
// verification
func IsChecksumMismatch(err error) bool {
	return errors.Is(err, ErrChecksumMismatch)
}
