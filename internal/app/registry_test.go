package app

import (
	"errors"
	"testing"

	"github.com/romnet/lobbyd/internal/protocol"
)

func TestRegistryReconnectSupersedes(t *testing.T) {
	r := NewRegistry("test")
	old := &fakeConn{}
	fresh := &fakeConn{}

	r.Connect("42", old)
	r.Connect("42", fresh)

	if err := r.Send("42", protocol.AuthSuccess{}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(old.sent()) != 0 {
		t.Fatalf("stale connection received %v", old.sent())
	}
	if got := fresh.sent(); len(got) != 1 || got[0] != "AUTH SUCCESS" {
		t.Fatalf("fresh connection received %v", got)
	}
}

func TestRegistryDisconnectGuardsNewerConn(t *testing.T) {
	r := NewRegistry("test")
	old := &fakeConn{}
	fresh := &fakeConn{}

	r.Connect("42", old)
	r.Connect("42", fresh)

	if r.Disconnect("42", old) {
		t.Fatalf("stale disconnect removed the newer connection")
	}
	if _, ok := r.Get("42"); !ok {
		t.Fatalf("newer connection is gone")
	}
	if !r.Disconnect("42", fresh) {
		t.Fatalf("matching disconnect did not remove the entry")
	}
	if r.Len() != 0 {
		t.Fatalf("registry not empty after disconnect")
	}
}

func TestRegistrySendWithoutConnFailsFast(t *testing.T) {
	r := NewRegistry("test")
	if err := r.Send("missing", protocol.LeaveGame{}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestRegistryBroadcast(t *testing.T) {
	r := NewRegistry("test")
	a := &fakeConn{}
	b := &fakeConn{}
	r.Connect("a", a)
	r.Connect("b", b)

	r.Broadcast(protocol.StartGame{})

	for name, c := range map[string]*fakeConn{"a": a, "b": b} {
		if got := c.sent(); len(got) != 1 || got[0] != "START GAME" {
			t.Fatalf("conn %s received %v", name, got)
		}
	}
}

func TestRegistryFindByConn(t *testing.T) {
	r := NewRegistry("test")
	c := &fakeConn{}
	r.Connect("77", c)

	if id, ok := r.FindByConn(c); !ok || id != "77" {
		t.Fatalf("FindByConn = %q, %v", id, ok)
	}
	if _, ok := r.FindByConn(&fakeConn{}); ok {
		t.Fatalf("found an unregistered connection")
	}
}
