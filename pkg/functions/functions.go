// Package functions defines the persisted function and invoke-request
// record types and the Store interface the gateway handlers use to read
// and write them.
package functions

import (
	"context"
	"time"

	"github.com/DeBrosOfficial/wasmfaas/pkg/wasmsig"
)

// Record is a deployed function's persisted metadata. Arity must always
// equal len(Signature.Params); the signature column round-trips through
// wasmsig's tagged-JSON marshaling.
type Record struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Arity     int
	Name      string
	URI       string
	UserURI   string
	Signature *wasmsig.FunctionSignature
}

// InvokeRequestRecord is one append-only audit row written for every
// invoke call, regardless of outcome.
type InvokeRequestRecord struct {
	ID         int64
	CreatedAt  time.Time
	FunctionID int64
	UserAddr   string
	Payload    []byte // raw JSON args, nil if none were supplied
}

// EnvVar is one entry of a function's flat string->string environment
// map, persisted at deploy time for a future compiler's use. Workers are
// opaque executors reached only via WSProto; env vars are never handed to
// them directly.
type EnvVar struct {
	FunctionID int64
	Key        string
	Value      string
}

// Store is the persistence boundary the gateway handlers depend on.
// Concrete implementations live in pkg/db.
type Store interface {
	CreateFunction(ctx context.Context, rec *Record) (int64, error)
	GetFunction(ctx context.Context, id int64) (*Record, error)
	ListFunctions(ctx context.Context) ([]*Record, error)

	RecordInvoke(ctx context.Context, rec *InvokeRequestRecord) (int64, error)

	SetEnv(ctx context.Context, functionID int64, env map[string]string) error
	GetEnv(ctx context.Context, functionID int64) (map[string]string, error)
}
