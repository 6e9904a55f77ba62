package wasmsig

import (
	"encoding/json"
	"testing"
)

// TestDecodeIdentityFunction decodes fn(i32) -> i32: bytes
// 0B 00 01 04 04 1B (Function, shim 0, 1 param I32, ret I32, inner Unit).
func TestDecodeIdentityFunction(t *testing.T) {
	bytes := []byte{0x0B, 0x00, 0x01, 0x04, 0x04, 0x1B}

	sig, err := DecodeFunctionSignature(bytes)
	if err != nil {
		t.Fatalf("DecodeFunctionSignature: %v", err)
	}

	if sig.ShimIdx != 0 {
		t.Errorf("ShimIdx = %d, want 0", sig.ShimIdx)
	}
	if sig.Arity() != 1 {
		t.Fatalf("Arity() = %d, want 1", sig.Arity())
	}
	if sig.Params[0].Kind != KindI32 {
		t.Errorf("Params[0].Kind = %v, want I32", sig.Params[0].Kind)
	}
	if sig.Return.Kind != KindI32 {
		t.Errorf("Return.Kind = %v, want I32", sig.Return.Kind)
	}
	if sig.InnerReturn.Kind != KindUnit {
		t.Errorf("InnerReturn.Kind = %v, want Unit", sig.InnerReturn.Kind)
	}
}

func TestDecodeNestedOption(t *testing.T) {
	// Option<String>: tag 25, then tag 14.
	d, err := Decode([]byte{25, 14})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Kind != KindOption {
		t.Fatalf("Kind = %v, want Option", d.Kind)
	}
	if d.Inner == nil || d.Inner.Kind != KindString {
		t.Fatalf("Inner = %+v, want String", d.Inner)
	}
}

func TestDecodeUnsupportedKnownTag(t *testing.T) {
	for _, tag := range []byte{12, 13, 17, 20, 21, 22, 23, 26, 28} {
		_, err := Decode([]byte{tag})
		if !IsUnsupportedType(err) {
			t.Errorf("tag %d: err = %v, want UnsupportedTypeError", tag, err)
		}
	}
}

func TestDecodeUnsupportedOutOfRangeTag(t *testing.T) {
	_, err := Decode([]byte{200})
	var ute *UnsupportedTypeError
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUnsupportedType(err) {
		t.Fatalf("err = %v, want UnsupportedTypeError", err)
	}
	_ = ute
}

func TestDecodeNotAFunction(t *testing.T) {
	_, err := DecodeFunctionSignature([]byte{4}) // bare I32
	if err != ErrNotAFunction {
		t.Fatalf("err = %v, want ErrNotAFunction", err)
	}
}

func TestDecodeTruncatedStream(t *testing.T) {
	// Function tag with no further bytes.
	_, err := Decode([]byte{11})
	if err != ErrCorruptFunctionDesc {
		t.Fatalf("err = %v, want ErrCorruptFunctionDesc", err)
	}
}

func TestFunctionSignatureJSONRoundTrip(t *testing.T) {
	sig := &FunctionSignature{
		ShimIdx: 3,
		Params: []Descriptor{
			{Kind: KindI32},
			{Kind: KindOption, Inner: &Descriptor{Kind: KindString}},
		},
		Return:      Descriptor{Kind: KindVector, Inner: &Descriptor{Kind: KindU8}},
		InnerReturn: Descriptor{Kind: KindUnit},
	}

	b, err := json.Marshal(sig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded FunctionSignature
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.ShimIdx != sig.ShimIdx {
		t.Errorf("ShimIdx = %d, want %d", decoded.ShimIdx, sig.ShimIdx)
	}
	if len(decoded.Params) != 2 || decoded.Params[0].Kind != KindI32 {
		t.Errorf("Params round-trip mismatch: %+v", decoded.Params)
	}
	if decoded.Params[1].Kind != KindOption || decoded.Params[1].Inner.Kind != KindString {
		t.Errorf("Params[1] round-trip mismatch: %+v", decoded.Params[1])
	}
	if decoded.Return.Kind != KindVector || decoded.Return.Inner.Kind != KindU8 {
		t.Errorf("Return round-trip mismatch: %+v", decoded.Return)
	}
}
