package registry

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestReplyTableFulfill(t *testing.T) {
	rt := NewReplyTable()
	slot := newReplySlot()
	rt.Register("req-1", slot)

	if err := rt.Fulfill("req-1", json.RawMessage(`{"ok":true}`)); err != nil {
		t.Fatalf("Fulfill: %v", err)
	}

	reply := <-slot
	if reply.Err != nil {
		t.Fatalf("reply.Err = %v, want nil", reply.Err)
	}
	if string(reply.Value) != `{"ok":true}` {
		t.Fatalf("reply.Value = %s", reply.Value)
	}
}

func TestReplyTableFulfillUnsolicited(t *testing.T) {
	rt := NewReplyTable()
	if err := rt.Fulfill("no-such-id", json.RawMessage(`{}`)); err != ErrUnsolicitedResponse {
		t.Fatalf("Fulfill(unknown) = %v, want ErrUnsolicitedResponse", err)
	}
}

func TestReplyTableDrain(t *testing.T) {
	rt := NewReplyTable()
	s1, s2 := newReplySlot(), newReplySlot()
	rt.Register("a", s1)
	rt.Register("b", s2)

	sentinel := errors.New("disconnected")
	rt.Drain(sentinel)

	for _, s := range []replySlot{s1, s2} {
		reply := <-s
		if reply.Err != sentinel {
			t.Fatalf("reply.Err = %v, want sentinel", reply.Err)
		}
	}

	// Table is empty after drain; fulfilling either id again is unsolicited.
	if err := rt.Fulfill("a", json.RawMessage(`{}`)); err != ErrUnsolicitedResponse {
		t.Fatalf("post-drain Fulfill = %v, want ErrUnsolicitedResponse", err)
	}
}

func TestReplyTableCancelSilentlyDropsLateArrival(t *testing.T) {
	rt := NewReplyTable()
	slot := newReplySlot()
	rt.Register("req-1", slot)
	rt.Cancel("req-1")

	// The late Fulfill matches the tombstone: dropped without error, so the
	// Supervisor does not terminate the connection over it.
	if err := rt.Fulfill("req-1", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Fulfill after Cancel = %v, want nil (silent drop)", err)
	}
	select {
	case reply := <-slot:
		t.Fatalf("cancelled slot received %+v, want nothing", reply)
	default:
	}

	// The tombstone is single-use: a second result for the same id has no
	// slot and no tombstone left, which is a genuine protocol violation.
	if err := rt.Fulfill("req-1", json.RawMessage(`{}`)); err != ErrUnsolicitedResponse {
		t.Fatalf("second Fulfill after Cancel = %v, want ErrUnsolicitedResponse", err)
	}
}

func TestReplyTableCancelUnknownLeavesNoTombstone(t *testing.T) {
	rt := NewReplyTable()
	rt.Cancel("never-registered")

	if err := rt.Fulfill("never-registered", json.RawMessage(`{}`)); err != ErrUnsolicitedResponse {
		t.Fatalf("Fulfill = %v, want ErrUnsolicitedResponse", err)
	}
}

func TestReplyTableRegisterDisplaces(t *testing.T) {
	rt := NewReplyTable()
	first := newReplySlot()
	second := newReplySlot()

	if displaced := rt.Register("dup", first); displaced != nil {
		t.Fatalf("first Register returned a displaced slot: %v", displaced)
	}
	displaced := rt.Register("dup", second)
	if displaced == nil {
		t.Fatal("second Register should have displaced the first slot")
	}
	if displaced != replySlot(first) {
		t.Fatal("displaced slot should be the first one registered")
	}
}
