// Package gateway wires the HTTP surface (deploy, invoke, function
// metadata, worker upgrade, health) onto the Worker Registry, the
// relational store, and blob storage.
package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/DeBrosOfficial/wasmfaas/pkg/compiler"
	"github.com/DeBrosOfficial/wasmfaas/pkg/functions"
	"github.com/DeBrosOfficial/wasmfaas/pkg/logging"
	"github.com/DeBrosOfficial/wasmfaas/pkg/registry"
	"github.com/DeBrosOfficial/wasmfaas/pkg/storage"
)

// maxDeployBodyBytes bounds how much of a deploy request body is read.
const maxDeployBodyBytes = 64 << 20 // 64 MiB

// maxInvokeBodyBytes bounds an invoke request's JSON body.
const maxInvokeBodyBytes = 1 << 20 // 1 MiB

// Dependencies are the collaborators every handler needs. It is
// constructed once at startup and passed by handle, never as a global.
type Dependencies struct {
	Registry *registry.Registry
	Store    functions.Store
	Blobs    storage.Storage
	Compiler compiler.Compiler
	Logger   *logging.ColoredLogger
	Upgrader websocket.Upgrader
}

// NewRouter builds the chi router exposing the full HTTP surface.
func NewRouter(deps *Dependencies) chi.Router {
	h := &handler{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", h.handleHealthz)
	r.Get("/ws", h.handleWS)
	r.Post("/functions", h.handleDeploy)
	r.Post("/functions/{id}", h.handleInvoke)
	r.Get("/functions/{id}", h.handleGetFunction)
	r.Get("/functions", h.handleListFunctions)

	return r
}

type handler struct {
	deps *Dependencies
}

func (h *handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]string{"status": "ok"})
}
