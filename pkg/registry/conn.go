package registry

import (
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConn abstracts the subset of *websocket.Conn the Supervisor
// needs, so tests can drive the inbound/outbound loops against an
// in-memory fake instead of a real socket.
type WebSocketConn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// GorillaConn adapts *websocket.Conn to WebSocketConn. It is the concrete
// type the `GET /ws` upgrade handler constructs.
type GorillaConn struct {
	*websocket.Conn
}

var _ WebSocketConn = (*GorillaConn)(nil)

const (
	textMessage  = websocket.TextMessage
	pingMessage  = websocket.PingMessage
	pongMessage  = websocket.PongMessage
	closeMessage = websocket.CloseMessage
)
