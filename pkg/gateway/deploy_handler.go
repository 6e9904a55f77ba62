package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/wasmfaas/pkg/compiler"
	"github.com/DeBrosOfficial/wasmfaas/pkg/functions"
	"github.com/DeBrosOfficial/wasmfaas/pkg/httputil"
	"github.com/DeBrosOfficial/wasmfaas/pkg/logging"
	"github.com/DeBrosOfficial/wasmfaas/pkg/wasmsig"
)

// errBodyRejected signals that resolveWasmBytes already wrote the HTTP
// response and the caller should simply return.
var errBodyRejected = errors.New("gateway: deploy body rejected")

type deployJSONBody struct {
	Body string `json:"body"`
}

// envHeader carries an optional flat string->string environment map
// alongside a deploy's wasm bytes, JSON-encoded. The deploy body itself is
// never multipart, so metadata travels out-of-band as a header.
const envHeader = "X-Function-Env"

// handleDeploy implements the Deployment Handler contract: accept either
// source code or wasm bytes (content-type negotiated), decode the
// signature, write the artifact to blob storage, insert a function row,
// and persist any env vars supplied alongside it.
func (h *handler) handleDeploy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := httputil.ReadBody(r, maxDeployBodyBytes)
	if err != nil {
		writeErrStatus(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	env, err := parseEnvHeader(r)
	if err != nil {
		writeErrStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	wasmBytes, err := h.resolveWasmBytes(w, r, body)
	if err != nil {
		return // resolveWasmBytes already wrote the response
	}

	name, sig, err := wasmsig.ExtractSignature(ctx, wasmBytes)
	if err != nil {
		h.deps.Logger.ComponentWarn(logging.ComponentGateway, "signature decode failed", zap.Error(err))
		writeErrStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	uri, err := h.deps.Blobs.Store(ctx, name, wasmBytes)
	if err != nil {
		h.deps.Logger.ComponentError(logging.ComponentGateway, "blob store failed", zap.Error(err))
		writeErrStatus(w, http.StatusInternalServerError, "failed to store artifact")
		return
	}

	rec := &functions.Record{
		Arity:     sig.Arity(),
		Name:      name,
		URI:       uri,
		UserURI:   "/functions/" + name,
		Signature: sig,
	}
	id, err := h.deps.Store.CreateFunction(ctx, rec)
	if err != nil {
		h.deps.Logger.ComponentError(logging.ComponentGateway, "create function failed", zap.Error(err))
		writeErrStatus(w, http.StatusInternalServerError, "failed to persist function")
		return
	}

	if len(env) > 0 {
		if err := h.deps.Store.SetEnv(ctx, id, env); err != nil {
			h.deps.Logger.ComponentError(logging.ComponentGateway, "set function env failed", zap.Error(err))
			writeErrStatus(w, http.StatusInternalServerError, "failed to persist function env")
			return
		}
	}

	writeOK(w, map[string]any{"id": id, "name": name, "uri": uri})
}

// parseEnvHeader decodes the optional X-Function-Env header into a flat
// string->string map. Absent header is not an error; a present-but-invalid
// one is.
func parseEnvHeader(r *http.Request) (map[string]string, error) {
	raw := r.Header.Get(envHeader)
	if raw == "" {
		return nil, nil
	}
	var env map[string]string
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, errors.New("invalid " + envHeader + " header: must be a JSON object of strings")
	}
	return env, nil
}

// resolveWasmBytes negotiates the deploy body's content type:
// application/wasm bodies are already compiled, JSON and text bodies carry
// source that is compiled synchronously before signature extraction.
func (h *handler) resolveWasmBytes(w http.ResponseWriter, r *http.Request, body []byte) ([]byte, error) {
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(r.Header.Get("Content-Type"), ";", 2)[0]))

	switch contentType {
	case "application/wasm":
		return body, nil
	case "application/json":
		var jb deployJSONBody
		if err := json.Unmarshal(body, &jb); err != nil {
			writeErrStatus(w, http.StatusBadRequest, "invalid JSON deploy body")
			return nil, errBodyRejected
		}
		return h.compileSource(w, r, jb.Body)
	case "application/text", "text/plain":
		return h.compileSource(w, r, string(body))
	default:
		writeErrStatus(w, http.StatusUnsupportedMediaType, "unsupported content-type "+contentType)
		return nil, errBodyRejected
	}
}

// compileSource hands source to the compiler and maps its failures to HTTP
// responses: a rejected program is the caller's fault, anything else is the
// gateway's.
func (h *handler) compileSource(w http.ResponseWriter, r *http.Request, source string) ([]byte, error) {
	if h.deps.Compiler == nil {
		writeErrStatus(w, http.StatusNotImplemented, "source compilation is not available; deploy compiled wasm via application/wasm")
		return nil, errBodyRejected
	}

	wasmBytes, err := h.deps.Compiler.Compile(r.Context(), source)
	if err != nil {
		if compiler.IsCompileFailed(err) {
			writeErrStatus(w, http.StatusBadRequest, err.Error())
		} else {
			h.deps.Logger.ComponentError(logging.ComponentGateway, "compile failed", zap.Error(err))
			writeErrStatus(w, http.StatusInternalServerError, "failed to compile source")
		}
		return nil, errBodyRejected
	}
	return wasmBytes, nil
}
