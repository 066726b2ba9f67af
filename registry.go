package main

import (
	"net"
	"sync"
)

// Registry maps network endpoints to player slots. Binding is
// last-writer-wins: a PLAYER_ID announcement from a new endpoint silently
// takes over the slot, which matches the deployed client behavior where a
// restarted client re-announces from a fresh source port. The policy lives
// entirely inside Bind so it can be revisited in one place.
type Registry struct {
	mu     sync.RWMutex
	byAddr map[string]int
	byID   map[int]*net.UDPAddr
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byAddr: make(map[string]int),
		byID:   make(map[int]*net.UDPAddr),
	}
}

// Bind associates an endpoint with a player slot, displacing any previous
// endpoint for that slot and any previous slot for that endpoint.
func (r *Registry) Bind(addr *net.UDPAddr, playerID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byID[playerID]; ok {
		delete(r.byAddr, old.String())
	}
	if oldID, ok := r.byAddr[addr.String()]; ok && oldID != playerID {
		delete(r.byID, oldID)
	}
	r.byAddr[addr.String()] = playerID
	r.byID[playerID] = addr
}

// PlayerAt returns the slot bound to an endpoint, if any.
func (r *Registry) PlayerAt(addr *net.UDPAddr) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byAddr[addr.String()]
	return id, ok
}

// Endpoints returns every bound endpoint for fan-out. Stale endpoints are
// never pruned; over UDP a vanished peer just stops receiving.
func (r *Registry) Endpoints() []*net.UDPAddr {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*net.UDPAddr, 0, len(r.byID))
	for _, addr := range r.byID {
		out = append(out, addr)
	}
	return out
}

// Count returns the number of bound slots.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
