package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	udpBufferSize = 1024
	// Per-sender command budget; matches the per-connection message cap the
	// game clients were tuned against.
	udpPacketsPerSec  = 50
	udpPacketBurst    = 100
	limiterIdleExpiry = 5 * time.Minute
)

// UDPServer owns the datagram socket: one receive loop feeding the
// dispatcher, and the Sender side of the broadcaster.
type UDPServer struct {
	conn *net.UDPConn

	mu       sync.Mutex
	limiters map[string]*senderLimiter
}

type senderLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUDPServer binds the game socket.
func NewUDPServer(addr string) (*UDPServer, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &UDPServer{
		conn:     conn,
		limiters: make(map[string]*senderLimiter),
	}, nil
}

// SendTo implements Sender.
func (s *UDPServer) SendTo(addr *net.UDPAddr, payload []byte) error {
	_, err := s.conn.WriteToUDP(payload, addr)
	return err
}

// LocalAddr returns the bound address.
func (s *UDPServer) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Close releases the socket.
func (s *UDPServer) Close() error {
	return s.conn.Close()
}

// Run reads datagrams until the context is cancelled, handing each to
// handle. Any single iteration's failure is logged and the loop continues;
// the receive loop must outlive every kind of bad input.
func (s *UDPServer) Run(ctx context.Context, handle func(raw []byte, addr *net.UDPAddr)) {
	buf := make([]byte, udpBufferSize)
	lastSweep := time.Now()

	for {
		if ctx.Err() != nil {
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(time.Second))
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("udp read: %v", err)
			continue
		}

		if !s.allow(addr) {
			rateLimitedTotal.Inc()
			continue
		}

		raw := make([]byte, n)
		copy(raw, buf[:n])
		handle(raw, addr)

		if time.Since(lastSweep) > limiterIdleExpiry {
			s.sweepLimiters()
			lastSweep = time.Now()
		}
	}
}

// allow applies the per-sender rate limit.
func (s *UDPServer) allow(addr *net.UDPAddr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := addr.String()
	entry, ok := s.limiters[key]
	if !ok {
		entry = &senderLimiter{
			limiter: rate.NewLimiter(rate.Limit(udpPacketsPerSec), udpPacketBurst),
		}
		s.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// sweepLimiters drops limiters for senders that have gone quiet so the map
// cannot grow without bound.
func (s *UDPServer) sweepLimiters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-limiterIdleExpiry)
	for key, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, key)
		}
	}
}
