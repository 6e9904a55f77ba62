package wasmsig

import (
	"context"
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

const describePrefix = "__wbindgen_describe_"

// sigAccumulator is the instance-owned buffer the __wbindgen_describe host
// import appends to, one byte per call.
type sigAccumulator struct {
	bytes            []byte
	externrefReached bool
}

// ExtractSignature instantiates wasmBytes under a host environment that
// supplies the two wasm-bindgen description imports, locates the module's
// single __wbindgen_describe_* export, calls it, and decodes the resulting
// byte stream into a function name and signature.
func ExtractSignature(ctx context.Context, wasmBytes []byte) (string, *FunctionSignature, error) {
	runtime := wazero.NewRuntime(ctx)
	defer runtime.Close(ctx)

	acc := &sigAccumulator{}

	if _, err := runtime.NewHostModuleBuilder("__wbindgen_placeholder__").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, _ api.Module, b uint32) {
			acc.bytes = append(acc.bytes, byte(b))
		}).
		Export("__wbindgen_describe").
		Instantiate(ctx); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrLoadingInstance, err)
	}

	if _, err := runtime.NewHostModuleBuilder("__wbindgen_externref_xform__").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, _ api.Module, _ uint32) uint32 {
			acc.externrefReached = true
			return 0
		}).
		Export("__wbindgen_externref_table_grow").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, _ api.Module, _, _ uint32) {
			acc.externrefReached = true
		}).
		Export("__wbindgen_externref_table_set_null").
		Instantiate(ctx); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrLoadingInstance, err)
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidModule, err)
	}
	defer compiled.Close(ctx)

	fnName, err := findDescribeExport(compiled)
	if err != nil {
		return "", nil, err
	}

	mod, err := runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrLoadingInstance, err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(fnName)
	if fn == nil {
		return "", nil, ErrFunctionNotFound
	}

	if _, err := fn.Call(ctx); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCorruptFunctionDesc, err)
	}
	if acc.externrefReached {
		return "", nil, fmt.Errorf("%w: %s", ErrCorruptFunctionDesc, "reached externref transform import")
	}

	sig, err := DecodeFunctionSignature(acc.bytes)
	if err != nil {
		return "", nil, err
	}

	return strings.TrimPrefix(fnName, describePrefix), sig, nil
}

func findDescribeExport(compiled wazero.CompiledModule) (string, error) {
	var found string
	count := 0
	for name := range compiled.ExportedFunctions() {
		if strings.HasPrefix(name, describePrefix) {
			found = name
			count++
		}
	}
	switch {
	case count == 0:
		return "", ErrFunctionNotFound
	case count > 1:
		return "", ErrMultipleExports
	default:
		return found, nil
	}
}
