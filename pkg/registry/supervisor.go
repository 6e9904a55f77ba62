package registry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/wasmfaas/pkg/logging"
	"github.com/DeBrosOfficial/wasmfaas/pkg/wsproto"
)

// DefaultIdleTimeout is the inbound idle deadline: exceeding it with no
// frame from the worker terminates the connection.
const DefaultIdleTimeout = 60 * time.Second

// DefaultPingInterval is how often the outbound loop sends a keepalive
// ping while idle, replacing the original's "every K poll iterations"
// counter with a ticker now that the loop is select-based.
const DefaultPingInterval = 1 * time.Second

// Supervisor owns one WebSocket's sink and source halves and runs the
// outbound (dispatch->socket) and inbound (socket->reply) loops that share
// the worker's Reply Table. Either loop exiting cancels the other; joint
// termination deregisters the worker and drains its Reply Table.
type Supervisor struct {
	worker *Worker
	conn   WebSocketConn
	pool   *WorkerPool
	logger *logging.ColoredLogger

	idleTimeout  time.Duration
	pingInterval time.Duration
}

// NewSupervisor constructs a Supervisor for worker over conn, registered
// against pool. Zero idleTimeout/pingInterval fall back to the defaults.
func NewSupervisor(worker *Worker, conn WebSocketConn, pool *WorkerPool, logger *logging.ColoredLogger, idleTimeout, pingInterval time.Duration) *Supervisor {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}
	return &Supervisor{
		worker:       worker,
		conn:         conn,
		pool:         pool,
		logger:       logger,
		idleTimeout:  idleTimeout,
		pingInterval: pingInterval,
	}
}

// Run drives both loops until either exits, then performs joint
// termination: the other loop is cancelled, the worker is removed from the
// pool, and its Reply Table is drained with ErrNoReply so no invoke hangs.
// Run blocks until termination is complete.
func (s *Supervisor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{}, 2)
	go func() {
		s.outboundLoop(ctx, cancel)
		done <- struct{}{}
	}()
	go func() {
		s.inboundLoop(ctx, cancel)
		done <- struct{}{}
	}()

	<-done
	cancel()
	<-done

	if _, err := s.pool.Remove(s.worker.ID); err != nil {
		s.logger.ComponentDebug(logging.ComponentRegistry, "deregister on termination",
			zap.String("worker_id", s.worker.ID), zap.Error(err))
	}
	s.worker.replyTable.Drain(ErrNoReply)
	_ = s.conn.Close()
}

func (s *Supervisor) outboundLoop(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-s.worker.dispatch:
			if !ok {
				return
			}
			if err := s.dispatchOne(req); err != nil {
				s.logger.ComponentDebug(logging.ComponentRegistry, "outbound write failed",
					zap.String("worker_id", s.worker.ID), zap.Error(err))
				cancel()
				return
			}
			ticker.Reset(s.pingInterval)
		case <-ticker.C:
			if err := s.conn.WriteMessage(pingMessage, wsproto.PingPayload); err != nil {
				s.logger.ComponentDebug(logging.ComponentRegistry, "ping write failed",
					zap.String("worker_id", s.worker.ID), zap.Error(err))
				cancel()
				return
			}
		}
	}
}

// dispatchOne serializes and writes the Invoke frame for req. Its reply
// slot is already registered in the Reply Table by the facade before req
// ever reached this channel, so the register-before-write invariant holds
// regardless of scheduling. A frame encoding failure fails only this one
// invoke; a socket write failure is returned so the caller terminates the
// connection (joint termination then drains the Reply Table, which
// delivers ErrNoReply to this slot along with every other pending one).
func (s *Supervisor) dispatchOne(req *dispatchRequest) error {
	frame := wsproto.NewInvokeFrame(req.id, req.name, req.uri, req.signature, req.args)
	payload, err := frame.Encode()
	if err != nil {
		s.worker.replyTable.FulfillErr(req.id, err)
		return nil
	}

	return s.conn.WriteMessage(textMessage, payload)
}

type inboundFrame struct {
	messageType int
	data        []byte
	err         error
}

// readPump adapts ReadMessage's blocking call to ctx cancellation: it sets
// the idle deadline before each read (the inbound idle timeout), then
// offers the result to inboundLoop or gives up if ctx is already done, so
// a read left blocked past cancellation (waiting for Close to unblock it)
// never leaks on a send nobody is left to receive.
func (s *Supervisor) readPump(ctx context.Context, frames chan<- inboundFrame) {
	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		mt, data, err := s.conn.ReadMessage()
		select {
		case frames <- inboundFrame{messageType: mt, data: data, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *Supervisor) inboundLoop(ctx context.Context, cancel context.CancelFunc) {
	frames := make(chan inboundFrame)
	go s.readPump(ctx, frames)

	for {
		select {
		case <-ctx.Done():
			return
		case f := <-frames:
			if f.err != nil {
				s.logger.ComponentDebug(logging.ComponentRegistry, "inbound read ended",
					zap.String("worker_id", s.worker.ID), zap.Error(f.err))
				cancel()
				return
			}
			if s.handleFrame(f) {
				cancel()
				return
			}
		}
	}
}

// handleFrame processes one inbound frame and reports whether the
// connection must now be terminated (a protocol violation, or a clean
// Close frame).
func (s *Supervisor) handleFrame(f inboundFrame) (terminate bool) {
	switch f.messageType {
	case textMessage:
		result, err := wsproto.DecodeResult(f.data)
		if err != nil {
			s.logger.ComponentWarn(logging.ComponentRegistry, "unparseable or illegal frame",
				zap.String("worker_id", s.worker.ID), zap.Error(err))
			return true
		}
		if err := s.worker.replyTable.Fulfill(result.RequestID, result.Content); err != nil {
			s.logger.ComponentWarn(logging.ComponentRegistry, "unsolicited response",
				zap.String("worker_id", s.worker.ID), zap.String("request_id", result.RequestID))
			return true
		}
		return false
	case pongMessage:
		s.worker.touchHeartbeat()
		return false
	case closeMessage:
		return true
	default:
		s.logger.ComponentDebug(logging.ComponentRegistry, "ignoring frame type",
			zap.String("worker_id", s.worker.ID), zap.Int("message_type", f.messageType))
		return false
	}
}
