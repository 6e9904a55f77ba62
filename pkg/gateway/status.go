package gateway

import (
	"net/http"

	"github.com/DeBrosOfficial/wasmfaas/pkg/httputil"
)

// Status is the uniform response envelope used by every handler, success
// or error alike — the original applies this shape repo-wide, not just to
// invoke responses, so it is adopted here for all of them.
type Status struct {
	Kind    string `json:"kind"`
	Message any    `json:"message"`
}

func writeStatus(w http.ResponseWriter, code int, kind string, message any) {
	httputil.WriteJSON(w, code, Status{Kind: kind, Message: message})
}

func writeOK(w http.ResponseWriter, message any) {
	writeStatus(w, http.StatusOK, "ok", message)
}

func writeErrStatus(w http.ResponseWriter, code int, message string) {
	writeStatus(w, code, "error", message)
}
