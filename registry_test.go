package main

import "testing"

func TestRegistryBindAndLookup(t *testing.T) {
	r := NewRegistry()
	a1 := udpAddr(40001)

	if _, ok := r.PlayerAt(a1); ok {
		t.Error("unbound endpoint should have no slot")
	}
	r.Bind(a1, Player1)
	id, ok := r.PlayerAt(a1)
	if !ok || id != Player1 {
		t.Errorf("expected slot 1, got %d/%v", id, ok)
	}
	if r.Count() != 1 {
		t.Errorf("expected 1 binding, got %d", r.Count())
	}
}

func TestRegistryLastWriterWins(t *testing.T) {
	r := NewRegistry()
	a1, a2 := udpAddr(40001), udpAddr(40002)

	r.Bind(a1, Player1)
	r.Bind(a2, Player1)

	if _, ok := r.PlayerAt(a1); ok {
		t.Error("displaced endpoint should be unbound")
	}
	if id, ok := r.PlayerAt(a2); !ok || id != Player1 {
		t.Error("new endpoint should own the slot")
	}
	if len(r.Endpoints()) != 1 {
		t.Errorf("expected 1 endpoint, got %d", len(r.Endpoints()))
	}
}

func TestRegistryEndpointSwitchesSlot(t *testing.T) {
	r := NewRegistry()
	a1 := udpAddr(40001)

	r.Bind(a1, Player1)
	r.Bind(a1, Player2)

	if id, _ := r.PlayerAt(a1); id != Player2 {
		t.Errorf("endpoint should now hold slot 2, got %d", id)
	}
	// Slot 1 must be vacated, not left pointing at the same endpoint
	if len(r.Endpoints()) != 1 {
		t.Errorf("expected 1 endpoint after re-bind, got %d", len(r.Endpoints()))
	}
}

func TestRegistryRebindSameSlotIsIdempotent(t *testing.T) {
	r := NewRegistry()
	a1 := udpAddr(40001)
	r.Bind(a1, Player1)
	r.Bind(a1, Player1)

	if id, ok := r.PlayerAt(a1); !ok || id != Player1 {
		t.Error("duplicate bind should be a no-op")
	}
	if r.Count() != 1 {
		t.Errorf("expected 1 binding, got %d", r.Count())
	}
}
