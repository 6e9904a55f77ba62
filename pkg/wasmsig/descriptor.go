// Package wasmsig decodes the wasm-bindgen description format: a
// streaming byte-tag stream emitted by a wasm module's
// __wbindgen_describe_* export that describes a single exported
// function's parameter and return types.
package wasmsig

import "fmt"

// Kind identifies a supported type descriptor. Its numeric values match the
// wire tags only for I8 through Function (0-11); the decoder maps each wire
// tag to its Kind explicitly, and unsupported tags never produce a Kind.
type Kind int

const (
	KindI8 Kind = iota
	KindU8
	KindI16
	KindU16
	KindI32
	KindU32
	KindI64
	KindU64
	KindF32
	KindF64
	KindBoolean
	KindFunction
	KindString
	KindRef
	KindRefMut
	KindSlice
	KindVector
	KindChar
	KindOption
	KindUnit
)

var kindNames = map[Kind]string{
	KindI8:       "i8",
	KindU8:       "u8",
	KindI16:      "i16",
	KindU16:      "u16",
	KindI32:      "i32",
	KindU32:      "u32",
	KindI64:      "i64",
	KindU64:      "u64",
	KindF32:      "f32",
	KindF64:      "f64",
	KindBoolean:  "boolean",
	KindFunction: "function",
	KindString:   "string",
	KindRef:      "ref",
	KindRefMut:   "ref_mut",
	KindSlice:    "slice",
	KindVector:   "vector",
	KindChar:     "char",
	KindOption:   "option",
	KindUnit:     "unit",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Descriptor is a decoded type descriptor. Ref, RefMut, Slice, Vector and
// Option carry Inner; Function carries Func. All other kinds are leaves.
type Descriptor struct {
	Kind  Kind
	Inner *Descriptor
	Func  *FunctionSignature
}

// FunctionSignature is the decoded description of a wasm-bindgen export:
// its wasm-bindgen ABI shim index, its parameter descriptors, its return
// descriptor, and the return type the outer return wraps (e.g. the Ok
// type of a Result, or the value type of an Option). The encoder always
// emits both return descriptors; there is no presence flag in the stream.
type FunctionSignature struct {
	ShimIdx     uint8
	Params      []Descriptor
	Return      Descriptor
	InnerReturn Descriptor
}

// Arity is the number of parameters the function accepts.
func (s *FunctionSignature) Arity() int {
	return len(s.Params)
}

// unsupportedNames maps the rejected tag values to the symbolic name used
// in UnsupportedTypeError, mirroring the wasm-bindgen descriptor constants
// this decoder deliberately declines to support.
var unsupportedNames = map[byte]string{
	12: "closure",
	13: "cached_string",
	17: "long_ref",
	20: "externref",
	21: "named_externref",
	22: "enum",
	23: "rust_struct",
	26: "result",
	28: "clamped_u8",
}

// Decode parses a single descriptor from the front of a wasm-bindgen
// description byte stream. It is exported so callers (and tests) can
// decode a standalone descriptor without going through ExtractSignature.
func Decode(b []byte) (Descriptor, error) {
	d := &byteReader{buf: b}
	desc, err := d.readDescriptor()
	if err != nil {
		return Descriptor{}, err
	}
	return desc, nil
}

// DecodeFunctionSignature parses a wasm-bindgen description byte stream
// and requires the outermost descriptor to be a Function.
func DecodeFunctionSignature(b []byte) (*FunctionSignature, error) {
	desc, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if desc.Kind != KindFunction {
		return nil, ErrNotAFunction
	}
	return desc.Func, nil
}

type byteReader struct {
	buf []byte
	pos int
}

func (d *byteReader) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, ErrCorruptFunctionDesc
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *byteReader) readDescriptor() (Descriptor, error) {
	tag, err := d.readByte()
	if err != nil {
		return Descriptor{}, err
	}

	switch tag {
	case 0:
		return Descriptor{Kind: KindI8}, nil
	case 1:
		return Descriptor{Kind: KindU8}, nil
	case 2:
		return Descriptor{Kind: KindI16}, nil
	case 3:
		return Descriptor{Kind: KindU16}, nil
	case 4:
		return Descriptor{Kind: KindI32}, nil
	case 5:
		return Descriptor{Kind: KindU32}, nil
	case 6:
		return Descriptor{Kind: KindI64}, nil
	case 7:
		return Descriptor{Kind: KindU64}, nil
	case 8:
		return Descriptor{Kind: KindF32}, nil
	case 9:
		return Descriptor{Kind: KindF64}, nil
	case 10:
		return Descriptor{Kind: KindBoolean}, nil
	case 11:
		return d.readFunction()
	case 14:
		return Descriptor{Kind: KindString}, nil
	case 15:
		return d.readNested(KindRef)
	case 16:
		return d.readNested(KindRefMut)
	case 18:
		return d.readNested(KindSlice)
	case 19:
		return d.readNested(KindVector)
	case 24:
		return Descriptor{Kind: KindChar}, nil
	case 25:
		return d.readNested(KindOption)
	case 27:
		return Descriptor{Kind: KindUnit}, nil
	default:
		if name, ok := unsupportedNames[tag]; ok {
			return Descriptor{}, &UnsupportedTypeError{Name: name}
		}
		return Descriptor{}, &UnsupportedTypeError{Name: "undefined"}
	}
}

func (d *byteReader) readNested(kind Kind) (Descriptor, error) {
	inner, err := d.readDescriptor()
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Kind: kind, Inner: &inner}, nil
}

func (d *byteReader) readFunction() (Descriptor, error) {
	shimIdx, err := d.readByte()
	if err != nil {
		return Descriptor{}, err
	}
	n, err := d.readByte()
	if err != nil {
		return Descriptor{}, err
	}

	params := make([]Descriptor, 0, n)
	for i := byte(0); i < n; i++ {
		p, err := d.readDescriptor()
		if err != nil {
			return Descriptor{}, err
		}
		params = append(params, p)
	}

	ret, err := d.readDescriptor()
	if err != nil {
		return Descriptor{}, err
	}
	innerRet, err := d.readDescriptor()
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		Kind: KindFunction,
		Func: &FunctionSignature{
			ShimIdx:     shimIdx,
			Params:      params,
			Return:      ret,
			InnerReturn: innerRet,
		},
	}, nil
}
