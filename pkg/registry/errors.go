package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the Registry facade. HTTP status mapping
// happens in the handler layer, never here.
var (
	// ErrNoWorkersAvailable means the pool was empty at pick time.
	ErrNoWorkersAvailable = errors.New("registry: no workers available")
	// ErrTimeout means either the dispatch-channel send or the reply-slot
	// receive exceeded the configured invoke timeout.
	ErrTimeout = errors.New("registry: invoke timed out")
	// ErrNoReply means the worker disconnected with the invoke still pending.
	ErrNoReply = errors.New("registry: worker disconnected before replying")
	// ErrInternalBookkeeping means the pool's index diverged from its
	// backing collection. Should never happen; surface as 5xx.
	ErrInternalBookkeeping = errors.New("registry: pool index/collection divergence")
	// ErrUnsolicitedResponse means a result frame arrived for an id with no
	// registered reply slot and no tombstone left by a timed-out invoke.
	// The Supervisor treats this as a protocol
	// violation and terminates the connection.
	ErrUnsolicitedResponse = errors.New("registry: unsolicited response")
	// ErrProtocolViolation means a worker sent a frame WSProto forbids in
	// the worker->server direction, or an unparseable payload.
	ErrProtocolViolation = errors.New("registry: protocol violation")
)

// MismatchedArgsError reports that an invoke call supplied a different
// number of arguments than the target function's arity.
type MismatchedArgsError struct {
	Expected int
	Got      int
}

func (e *MismatchedArgsError) Error() string {
	return fmt.Sprintf("registry: expected %d args, got %d", e.Expected, e.Got)
}

// IsMismatchedArgs reports whether err is a *MismatchedArgsError.
func IsMismatchedArgs(err error) bool {
	var m *MismatchedArgsError
	return errors.As(err, &m)
}

// IsNoWorkersAvailable reports whether err is (or wraps) ErrNoWorkersAvailable.
func IsNoWorkersAvailable(err error) bool { return errors.Is(err, ErrNoWorkersAvailable) }

// IsTimeout reports whether err is (or wraps) ErrTimeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsNoReply reports whether err is (or wraps) ErrNoReply.
func IsNoReply(err error) bool { return errors.Is(err, ErrNoReply) }

// IsInternalBookkeeping reports whether err is (or wraps) ErrInternalBookkeeping.
func IsInternalBookkeeping(err error) bool { return errors.Is(err, ErrInternalBookkeeping) }
