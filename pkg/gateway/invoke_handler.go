package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/wasmfaas/pkg/functions"
	"github.com/DeBrosOfficial/wasmfaas/pkg/httputil"
	"github.com/DeBrosOfficial/wasmfaas/pkg/logging"
	"github.com/DeBrosOfficial/wasmfaas/pkg/registry"
)

type invokeBody struct {
	Args []json.RawMessage `json:"args"`
}

// handleInvoke implements the Invocation Handler contract: load the
// function record, verify arity, record an audit row, dispatch through
// the Registry, and return its result verbatim under the Status envelope.
func (h *handler) handleInvoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrStatus(w, http.StatusBadRequest, "invalid function id")
		return
	}

	fn, err := h.deps.Store.GetFunction(ctx, id)
	if err != nil {
		if functions.IsNotFound(err) {
			writeErrStatus(w, http.StatusNotFound, "function not found")
			return
		}
		writeErrStatus(w, http.StatusInternalServerError, "failed to load function")
		return
	}

	body, err := httputil.ReadBody(r, maxInvokeBodyBytes)
	if err != nil {
		writeErrStatus(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var reqBody invokeBody
	if len(body) > 0 {
		if err := json.Unmarshal(body, &reqBody); err != nil {
			writeErrStatus(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	if len(reqBody.Args) != fn.Arity {
		writeErrStatus(w, http.StatusBadRequest,
			(&registry.MismatchedArgsError{Expected: fn.Arity, Got: len(reqBody.Args)}).Error())
		return
	}

	var payload []byte
	if len(reqBody.Args) > 0 {
		payload, _ = json.Marshal(reqBody.Args)
	}
	if _, err := h.deps.Store.RecordInvoke(ctx, &functions.InvokeRequestRecord{
		FunctionID: id,
		UserAddr:   clientIP(r),
		Payload:    payload,
	}); err != nil {
		h.deps.Logger.ComponentWarn(logging.ComponentGateway, "failed to record invoke audit row", zap.Error(err))
	}

	result, err := h.deps.Registry.Invoke(ctx, fn.Name, fn.URI, fn.Signature, reqBody.Args)
	if err != nil {
		writeStatus(w, statusForInvokeErr(err), "error", err.Error())
		return
	}

	var value any
	_ = json.Unmarshal(result, &value)
	writeOK(w, value)
}

func statusForInvokeErr(err error) int {
	switch {
	case registry.IsNoWorkersAvailable(err):
		return http.StatusBadRequest
	case registry.IsTimeout(err), registry.IsNoReply(err):
		return http.StatusInternalServerError
	case registry.IsInternalBookkeeping(err):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// clientIP takes X-Forwarded-For if present, else the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	return r.RemoteAddr
}
