package registry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/DeBrosOfficial/wasmfaas/pkg/wasmsig"
)

// dispatchRequest is what the Registry facade places on a worker's
// outbound dispatch channel. The request-id is minted by the facade and
// its reply slot registered in the Reply Table *before* this struct is
// even sent, so the outbound loop's only remaining job is to serialize and
// write the Invoke frame — the register-before-write invariant holds by
// construction rather than by loop ordering.
type dispatchRequest struct {
	id        string
	name      string
	uri       string
	signature *wasmsig.FunctionSignature
	args      []json.RawMessage
}

// Worker is the in-memory handle for one registered WebSocket connection:
// an opaque id, the outbound dispatch channel into its Supervisor, its
// reply table, and a last-heartbeat timestamp.
type Worker struct {
	ID         string
	dispatch   chan *dispatchRequest
	replyTable *ReplyTable

	mu            sync.Mutex
	lastHeartbeat time.Time
}

func newWorker(id string, channelSize int) *Worker {
	return &Worker{
		ID:            id,
		dispatch:      make(chan *dispatchRequest, channelSize),
		replyTable:    NewReplyTable(),
		lastHeartbeat: time.Now(),
	}
}

func (w *Worker) touchHeartbeat() {
	w.mu.Lock()
	w.lastHeartbeat = time.Now()
	w.mu.Unlock()
}

// LastHeartbeat reports the last time a Pong was observed, or the worker's
// creation time if none has arrived yet.
func (w *Worker) LastHeartbeat() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastHeartbeat
}
