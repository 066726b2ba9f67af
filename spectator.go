package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufSize    = 256
	maxSpectators  = 64
)

// Envelope wraps outgoing spectator messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// Spectator message types
const (
	MsgWire     = "wire"     // a game wire message, verbatim
	MsgSnapshot = "snapshot" // binary msgpack SessionSnapshot
)

// SpectatorHub manages WebSocket observers of the live game: every UDP wire
// message is mirrored to them as JSON, and session snapshots go out as
// msgpack binary frames. Spectators are read-only; nothing they send
// reaches the game.
type SpectatorHub struct {
	mu         sync.RWMutex
	clients    map[*Spectator]bool
	register   chan *Spectator
	unregister chan *Spectator
}

// NewSpectatorHub creates an empty hub.
func NewSpectatorHub() *SpectatorHub {
	return &SpectatorHub{
		clients:    make(map[*Spectator]bool),
		register:   make(chan *Spectator, 16),
		unregister: make(chan *Spectator, 16),
	}
}

// Run processes register/unregister events
func (h *SpectatorHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			spectatorsActive.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				spectatorsActive.Dec()
			}
			h.mu.Unlock()
		}
	}
}

// CanAccept reports whether another spectator fits.
func (h *SpectatorHub) CanAccept() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) < maxSpectators
}

// Count returns the number of connected spectators.
func (h *SpectatorHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RelayWire mirrors one game wire message to every spectator.
func (h *SpectatorHub) RelayWire(msg string) {
	data, err := json.Marshal(Envelope{T: MsgWire, Data: msg})
	if err != nil {
		return
	}
	h.fanOut(data)
}

// SendSnapshot pushes a msgpack-encoded session snapshot as a binary frame.
func (h *SpectatorHub) SendSnapshot(snap SessionSnapshot) {
	encoded, err := msgpack.Marshal(snap)
	if err != nil {
		log.Printf("snapshot encode: %v", err)
		return
	}
	// 0xFF marker tells the write pump to emit a binary message
	data := append([]byte{0xFF}, encoded...)
	h.fanOut(data)
}

func (h *SpectatorHub) fanOut(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow spectator: drop the frame rather than stall the game
		}
	}
}

// Spectator represents one WebSocket observer
type Spectator struct {
	hub  *SpectatorHub
	conn *websocket.Conn
	send chan []byte
}

// NewSpectator creates a spectator for an upgraded connection.
func NewSpectator(hub *SpectatorHub, conn *websocket.Conn) *Spectator {
	return &Spectator{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
}

// ReadPump drains (and ignores) inbound frames so pings are answered and a
// closed peer is noticed.
func (s *Spectator) ReadPump() {
	defer func() {
		s.hub.unregister <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("spectator read: %v", err)
			}
			return
		}
	}
}

// WritePump writes queued frames and keepalive pings.
func (s *Spectator) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = s.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = s.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
