package registry

import (
	"errors"
	"sync"
	"time"
)

// fakeInbound is one simulated read result, pushed by a test's "worker"
// goroutine to drive the Supervisor's inbound loop.
type fakeInbound struct {
	messageType int
	data        []byte
	err         error
}

// fakeConn is a hand-rolled WebSocketConn double: text writes land on
// outbound, pings on pings, reads are served from inbound, and closing
// unblocks both sides. Keepalive pings get their own channel so a test's
// invoke-frame assertions never race with the ping ticker.
type fakeConn struct {
	outbound chan []byte
	pings    chan []byte
	inbound  chan fakeInbound

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		outbound: make(chan []byte, 64),
		pings:    make(chan []byte, 64),
		inbound:  make(chan fakeInbound, 64),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	cp := append([]byte(nil), data...)
	dest := c.outbound
	if messageType == pingMessage {
		dest = c.pings
	}
	select {
	case dest <- cp:
		return nil
	case <-c.closed:
		return errors.New("fakeConn: closed")
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case f := <-c.inbound:
		return f.messageType, f.data, f.err
	case <-c.closed:
		return 0, nil, errors.New("fakeConn: closed")
	}
}

func (c *fakeConn) SetReadDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// pushText simulates the remote worker sending a text frame.
func (c *fakeConn) pushText(data []byte) {
	select {
	case c.inbound <- fakeInbound{messageType: textMessage, data: data}:
	case <-c.closed:
	}
}

// pushReadErr simulates the remote worker's connection dying.
func (c *fakeConn) pushReadErr(err error) {
	select {
	case c.inbound <- fakeInbound{err: err}:
	case <-c.closed:
	}
}

var _ WebSocketConn = (*fakeConn)(nil)
