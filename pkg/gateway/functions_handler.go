package gateway

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/DeBrosOfficial/wasmfaas/pkg/functions"
)

type functionView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	URI       string `json:"uri"`
	UserURI   string `json:"user_uri"`
	Arity     int    `json:"arity"`
	Signature any    `json:"signature"`
}

func toFunctionView(rec *functions.Record) functionView {
	return functionView{
		ID:        rec.ID,
		Name:      rec.Name,
		URI:       rec.URI,
		UserURI:   rec.UserURI,
		Arity:     rec.Arity,
		Signature: rec.Signature,
	}
}

// handleGetFunction fetches a deployed function's metadata without
// invoking it.
func (h *handler) handleGetFunction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrStatus(w, http.StatusBadRequest, "invalid function id")
		return
	}

	rec, err := h.deps.Store.GetFunction(r.Context(), id)
	if err != nil {
		if functions.IsNotFound(err) {
			writeErrStatus(w, http.StatusNotFound, "function not found")
			return
		}
		writeErrStatus(w, http.StatusInternalServerError, "failed to load function")
		return
	}

	writeOK(w, toFunctionView(rec))
}

// handleListFunctions lists all deployed functions.
func (h *handler) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	recs, err := h.deps.Store.ListFunctions(r.Context())
	if err != nil {
		writeErrStatus(w, http.StatusInternalServerError, "failed to list functions")
		return
	}

	views := make([]functionView, len(recs))
	for i, rec := range recs {
		views[i] = toFunctionView(rec)
	}
	writeOK(w, views)
}
