// Package registry implements the Worker Registry and Dispatch subsystem:
// a pool of WebSocket-connected workers, per-connection reply tables
// correlating requests to results, and a facade that dispatches an invoke
// to a round-robin-selected worker and waits for its reply.
package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/wasmfaas/pkg/logging"
	"github.com/DeBrosOfficial/wasmfaas/pkg/wasmsig"
)

// Config holds the two knobs the Registry Facade needs: the outbound
// dispatch buffer depth per worker, and the end-to-end invoke deadline.
type Config struct {
	ChannelSize int
	Timeout     time.Duration
}

// Handle is returned to the WebSocket upgrader on registration. It is the
// caller's only way to run the connection's Supervisor loop and to learn
// the worker's assigned id.
type Handle struct {
	WorkerID string

	supervisor *Supervisor
}

// Run drives the connection's Supervisor until either loop exits. It
// blocks for the lifetime of the connection; the `GET /ws` handler calls it
// directly and returns once it does.
func (h *Handle) Run(ctx context.Context) {
	h.supervisor.Run(ctx)
}

// Registry is the process-wide singleton coordinating worker registration
// and invoke dispatch. It holds no state beyond the pool; callers pass it
// by handle into every HTTP handler rather than via a package global.
type Registry struct {
	pool   *WorkerPool
	cfg    Config
	logger *logging.ColoredLogger
}

// New constructs a Registry with the given configuration.
func New(cfg Config, logger *logging.ColoredLogger) *Registry {
	return &Registry{
		pool:   NewWorkerPool(),
		cfg:    cfg,
		logger: logger,
	}
}

// Size reports the number of currently registered workers.
func (r *Registry) Size() int {
	return r.pool.Size()
}

// Register mints a worker id, builds its dispatch channel and Supervisor,
// adds it to the pool, and returns a Handle the caller runs to drive the
// connection's lifetime.
func (r *Registry) Register(conn WebSocketConn) *Handle {
	id := uuid.New().String()
	w := newWorker(id, r.cfg.ChannelSize)
	r.pool.Add(w)

	sup := NewSupervisor(w, conn, r.pool, r.logger, DefaultIdleTimeout, DefaultPingInterval)

	r.logger.ComponentInfo(logging.ComponentRegistry, "worker registered", zap.String("worker_id", id))

	return &Handle{WorkerID: id, supervisor: sup}
}

// Deregister removes the worker by id. Errors are logged, not propagated:
// the connection is going away regardless of whether bookkeeping succeeds.
func (r *Registry) Deregister(id string) {
	if _, err := r.pool.Remove(id); err != nil {
		r.logger.ComponentDebug(logging.ComponentRegistry, "deregister", zap.String("worker_id", id), zap.Error(err))
	}
}

// Invoke dispatches name/uri/signature/args to a round-robin-selected
// worker and waits for its reply, subject to the configured end-to-end
// timeout. The reply slot is registered in the worker's Reply Table
// before the request is even handed to the dispatch channel, so the
// register-before-write invariant holds regardless of scheduling. On
// timeout the slot is explicitly cancelled, leaving a tombstone, so a
// tardy result is silently dropped instead of terminating a perfectly
// healthy worker as a protocol violator.
func (r *Registry) Invoke(ctx context.Context, name, uri string, signature *wasmsig.FunctionSignature, args []json.RawMessage) (json.RawMessage, error) {
	w, err := r.pool.Pick()
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	slot := newReplySlot()
	w.replyTable.Register(id, slot)

	req := &dispatchRequest{id: id, name: name, uri: uri, signature: signature, args: args}

	deadline := time.After(r.cfg.Timeout)
	select {
	case w.dispatch <- req:
	case <-deadline:
		w.replyTable.Cancel(id)
		return nil, ErrTimeout
	case <-ctx.Done():
		w.replyTable.Cancel(id)
		return nil, ctx.Err()
	}

	select {
	case reply := <-slot:
		if reply.Err != nil {
			return nil, reply.Err
		}
		return reply.Value, nil
	case <-deadline:
		w.replyTable.Cancel(id)
		return nil, ErrTimeout
	case <-ctx.Done():
		w.replyTable.Cancel(id)
		return nil, ctx.Err()
	}
}
