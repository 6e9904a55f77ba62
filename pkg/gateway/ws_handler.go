package gateway

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/wasmfaas/pkg/logging"
	"github.com/DeBrosOfficial/wasmfaas/pkg/registry"
)

// handleWS upgrades a worker's HTTP connection to WebSocket, registers it
// with the Registry, and drives its Supervisor for the lifetime of the
// connection. No subprotocol negotiation.
func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.deps.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.deps.Logger.ComponentWarn(logging.ComponentGateway, "websocket upgrade failed", zap.Error(err))
		return
	}

	wrapped := &registry.GorillaConn{Conn: conn}
	handle := h.deps.Registry.Register(wrapped)

	h.deps.Logger.ComponentInfo(logging.ComponentGateway, "worker connected", zap.String("worker_id", handle.WorkerID))
	handle.Run(r.Context())
	h.deps.Logger.ComponentInfo(logging.ComponentGateway, "worker disconnected", zap.String("worker_id", handle.WorkerID))
}
