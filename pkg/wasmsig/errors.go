package wasmsig

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by ExtractSignature and Decode. All are
// caller-facing (4xx): the module or its description bytes are malformed,
// not a fault of the registry.
var (
	// ErrInvalidModule means the wasm bytes could not be parsed/compiled.
	ErrInvalidModule = errors.New("invalid wasm module")

	// ErrLoadingInstance means the module failed to instantiate under the
	// host environment (missing imports, trap during start, etc).
	ErrLoadingInstance = errors.New("failed to instantiate wasm module")

	// ErrFunctionNotFound means no export begins with __wbindgen_describe_.
	ErrFunctionNotFound = errors.New("no __wbindgen_describe_* export found")

	// ErrMultipleExports means more than one export begins with
	// __wbindgen_describe_; the module must describe exactly one function.
	ErrMultipleExports = errors.New("multiple __wbindgen_describe_* exports found")

	// ErrCorruptFunctionDesc means the describe function could not be
	// called cleanly, it touched an import reserved for externref
	// transforms (a feature this decoder does not support), or the
	// description byte stream ended in the middle of a descriptor.
	ErrCorruptFunctionDesc = errors.New("corrupt function description")

	// ErrNotAFunction means the outermost decoded descriptor was not tag 11.
	ErrNotAFunction = errors.New("outermost descriptor is not a function")
)

// UnsupportedTypeError is returned when the descriptor stream contains a
// tag this decoder deliberately does not support (closures, externrefs,
// enums, and similar wasm-bindgen-internal types), or a tag outside the
// known 0-28 range.
type UnsupportedTypeError struct {
	Name string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Name)
}

// IsUnsupportedType reports whether err is an *UnsupportedTypeError.
func IsUnsupportedType(err error) bool {
	var t *UnsupportedTypeError
	return errors.As(err, &t)
}
