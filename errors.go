package pathio

import (
	"errors"
	"fmt"
	"io/fs"
)

// Common pathio errors. Where possible, these alias io/fs package errors
// for compatibility with errors.Is(err, fs.ErrNotExist) and friends.
var (
	ErrNotFound          = fs.ErrNotExist
	ErrExist             = fs.ErrExist
	ErrInvalidPath       = errors.New("pathio: invalid path")
	ErrUnsupportedFormat = errors.New("pathio: unsupported format")
)

// TransferError wraps a per-file failure during a multi-file copy.
// Files that completed before the failure are left in place.
type TransferError struct {
	From string
	To   string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("pathio: transfer %q -> %q: %v", e.From, e.To, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
