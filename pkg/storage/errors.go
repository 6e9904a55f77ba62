package storage

import "errors"

// ErrNotFound means no blob exists at the requested URI.
var ErrNotFound = errors.New("storage: not found")

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
