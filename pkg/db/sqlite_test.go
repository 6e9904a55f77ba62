package db

import (
	"context"
	"testing"

	"github.com/DeBrosOfficial/wasmfaas/pkg/functions"
	"github.com/DeBrosOfficial/wasmfaas/pkg/wasmsig"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetFunction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sig := &wasmsig.FunctionSignature{
		ShimIdx:     0,
		Params:      []wasmsig.Descriptor{{Kind: wasmsig.KindI32}},
		Return:      wasmsig.Descriptor{Kind: wasmsig.KindI32},
		InnerReturn: wasmsig.Descriptor{Kind: wasmsig.KindUnit},
	}

	id, err := s.CreateFunction(ctx, &functions.Record{
		Arity:     1,
		Name:      "double",
		URI:       "double_abc123.wasm",
		UserURI:   "/functions/1",
		Signature: sig,
	})
	if err != nil {
		t.Fatalf("CreateFunction: %v", err)
	}

	rec, err := s.GetFunction(ctx, id)
	if err != nil {
		t.Fatalf("GetFunction: %v", err)
	}
	if rec.Name != "double" || rec.Arity != 1 {
		t.Errorf("rec = %+v", rec)
	}
	if rec.Signature.Return.Kind != wasmsig.KindI32 {
		t.Errorf("Signature round-trip failed: %+v", rec.Signature)
	}
}

func TestGetFunctionNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetFunction(context.Background(), 999); !functions.IsNotFound(err) {
		t.Fatalf("GetFunction(missing) = %v, want ErrNotFound", err)
	}
}

func TestListFunctions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sig := &wasmsig.FunctionSignature{Return: wasmsig.Descriptor{Kind: wasmsig.KindUnit}, InnerReturn: wasmsig.Descriptor{Kind: wasmsig.KindUnit}}

	for _, name := range []string{"a", "b"} {
		if _, err := s.CreateFunction(ctx, &functions.Record{Name: name, URI: name + ".wasm", Signature: sig}); err != nil {
			t.Fatalf("CreateFunction(%s): %v", name, err)
		}
	}

	list, err := s.ListFunctions(ctx)
	if err != nil {
		t.Fatalf("ListFunctions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListFunctions returned %d records, want 2", len(list))
	}
}

func TestEnvRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sig := &wasmsig.FunctionSignature{Return: wasmsig.Descriptor{Kind: wasmsig.KindUnit}, InnerReturn: wasmsig.Descriptor{Kind: wasmsig.KindUnit}}
	id, err := s.CreateFunction(ctx, &functions.Record{Name: "envfn", URI: "envfn.wasm", Signature: sig})
	if err != nil {
		t.Fatalf("CreateFunction: %v", err)
	}

	want := map[string]string{"FOO": "bar", "BAZ": "qux"}
	if err := s.SetEnv(ctx, id, want); err != nil {
		t.Fatalf("SetEnv: %v", err)
	}

	got, err := s.GetEnv(ctx, id)
	if err != nil {
		t.Fatalf("GetEnv: %v", err)
	}
	if len(got) != len(want) || got["FOO"] != "bar" || got["BAZ"] != "qux" {
		t.Fatalf("GetEnv = %v, want %v", got, want)
	}

	// Re-setting replaces the prior map rather than merging.
	if err := s.SetEnv(ctx, id, map[string]string{"ONLY": "this"}); err != nil {
		t.Fatalf("SetEnv (replace): %v", err)
	}
	got, err = s.GetEnv(ctx, id)
	if err != nil {
		t.Fatalf("GetEnv after replace: %v", err)
	}
	if len(got) != 1 || got["ONLY"] != "this" {
		t.Fatalf("GetEnv after replace = %v", got)
	}
}

func TestRecordInvoke(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sig := &wasmsig.FunctionSignature{Return: wasmsig.Descriptor{Kind: wasmsig.KindUnit}, InnerReturn: wasmsig.Descriptor{Kind: wasmsig.KindUnit}}
	id, err := s.CreateFunction(ctx, &functions.Record{Name: "fn", URI: "fn.wasm", Signature: sig})
	if err != nil {
		t.Fatalf("CreateFunction: %v", err)
	}

	invID, err := s.RecordInvoke(ctx, &functions.InvokeRequestRecord{
		FunctionID: id,
		UserAddr:   "127.0.0.1:1234",
		Payload:    []byte(`[1,2,3]`),
	})
	if err != nil {
		t.Fatalf("RecordInvoke: %v", err)
	}
	if invID == 0 {
		t.Fatal("RecordInvoke returned zero id")
	}
}
