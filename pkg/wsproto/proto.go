// Package wsproto defines the JSON-encoded WebSocket wire protocol
// multiplexed over each worker's single duplex connection: an Invoke
// frame sent server-to-worker, and a Result frame sent worker-to-server.
package wsproto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DeBrosOfficial/wasmfaas/pkg/wasmsig"
)

// FrameType is the WSProto "type" discriminant.
type FrameType string

const (
	// FrameInvoke is server->worker only.
	FrameInvoke FrameType = "invoke"
	// FrameResult is worker->server only.
	FrameResult FrameType = "result"
)

// PingPayload is the fixed 3-byte keepalive payload the outbound loop
// writes whenever a ping interval passes with no outbound invoke traffic.
var PingPayload = []byte{0x41, 0x42, 0x43}

// InvokeFrame is sent by the Registry to a worker to request execution.
type InvokeFrame struct {
	Type      FrameType                  `json:"type"`
	RequestID string                     `json:"request_id"`
	Name      string                     `json:"name"`
	URI       string                     `json:"uri"`
	Signature *wasmsig.FunctionSignature `json:"signature"`
	Args      []json.RawMessage          `json:"args"`
}

// NewInvokeFrame builds an InvokeFrame with the type discriminant set.
func NewInvokeFrame(requestID, name, uri string, sig *wasmsig.FunctionSignature, args []json.RawMessage) InvokeFrame {
	return InvokeFrame{
		Type:      FrameInvoke,
		RequestID: requestID,
		Name:      name,
		URI:       uri,
		Signature: sig,
		Args:      args,
	}
}

// Encode serializes the frame as a WSProto text-frame payload.
func (f InvokeFrame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// ResultFrame is sent by a worker back to the Registry carrying the
// outcome of one previously dispatched InvokeFrame.
type ResultFrame struct {
	Type      FrameType       `json:"type"`
	RequestID string          `json:"request_id"`
	Content   json.RawMessage `json:"content"`
}

// NewResultFrame builds a ResultFrame with the type discriminant set.
func NewResultFrame(requestID string, content json.RawMessage) ResultFrame {
	return ResultFrame{Type: FrameResult, RequestID: requestID, Content: content}
}

// Encode serializes the frame as a WSProto text-frame payload.
func (f ResultFrame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// ErrUnknownFrameType means the "type" discriminant was missing or did not
// match a known WSProto variant. Callers treat this as a protocol
// violation and terminate the connection.
var ErrUnknownFrameType = errors.New("wsproto: unknown or missing frame type")

// DecodeResult parses a text frame that must be a Result frame — the only
// variant legal from a worker. Any other discriminant, or invalid JSON, is
// reported via ErrUnknownFrameType so the caller can treat it uniformly as
// a protocol violation.
func DecodeResult(payload []byte) (ResultFrame, error) {
	var envelope struct {
		Type FrameType `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return ResultFrame{}, fmt.Errorf("%w: %v", ErrUnknownFrameType, err)
	}
	if envelope.Type != FrameResult {
		return ResultFrame{}, fmt.Errorf("%w: got %q", ErrUnknownFrameType, envelope.Type)
	}
	var rf ResultFrame
	if err := json.Unmarshal(payload, &rf); err != nil {
		return ResultFrame{}, fmt.Errorf("%w: %v", ErrUnknownFrameType, err)
	}
	return rf, nil
}
