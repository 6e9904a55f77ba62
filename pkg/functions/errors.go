package functions

import "errors"

// ErrNotFound means no function record exists for the requested id.
var ErrNotFound = errors.New("functions: not found")

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
