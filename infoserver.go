package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"strconv"
	"strings"
)

// InfoServer is the auxiliary reliable channel. Each connection accepts a
// mix of two request shapes, distinguished by content:
//
//   - a decimal game id, answered with the catalog entry as JSON (or an
//     error object when unknown);
//   - a JSON array [x, y, playerId], raw accelerometer ingestion pushed
//     into the motion feed, no reply.
//
// "exit" closes the connection.
type InfoServer struct {
	listener net.Listener
	db       *DB
	feed     *FeedSource
}

// NewInfoServer binds the stream listener. feed may be nil when the motion
// relay runs from simulated data.
func NewInfoServer(addr string, db *DB, feed *FeedSource) (*InfoServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &InfoServer{listener: listener, db: db, feed: feed}, nil
}

// Addr returns the bound address.
func (s *InfoServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops accepting connections.
func (s *InfoServer) Close() error {
	return s.listener.Close()
}

// Run accepts connections until the listener closes.
func (s *InfoServer) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("info server accept: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *InfoServer) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr()
	log.Printf("info client %s connected", remote)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		request := strings.TrimSpace(scanner.Text())
		if request == "" {
			continue
		}
		if strings.EqualFold(request, "exit") {
			log.Printf("info client %s requested exit", remote)
			return
		}

		if strings.HasPrefix(request, "[") {
			s.ingestMotion(request, remote)
			continue
		}

		gameID, err := strconv.ParseInt(request, 10, 64)
		if err != nil {
			s.reply(conn, map[string]string{"error": "invalid request"})
			continue
		}
		s.reply(conn, s.lookup(gameID))
	}
	log.Printf("info client %s disconnected", remote)
}

// ingestMotion parses one [x, y, playerId] frame into the motion feed.
func (s *InfoServer) ingestMotion(request string, remote net.Addr) {
	var triple []int
	if err := json.Unmarshal([]byte(request), &triple); err != nil || len(triple) != 3 {
		log.Printf("bad motion frame from %s: %q", remote, request)
		return
	}
	if s.feed == nil {
		return
	}
	sample := MotionSample{X: triple[0], Y: triple[1], PlayerID: triple[2]}
	if sample.PlayerID != Player1 && sample.PlayerID != Player2 {
		log.Printf("motion frame from %s names player %d, dropping", remote, sample.PlayerID)
		return
	}
	if !s.feed.Push(sample) {
		motionDropped.Inc()
	}
}

func (s *InfoServer) lookup(gameID int64) interface{} {
	if s.db == nil {
		return map[string]string{"error": "catalog unavailable"}
	}
	info, err := s.db.GameInfo(gameID)
	if err != nil {
		log.Printf("game info lookup %d: %v", gameID, err)
		return map[string]string{"error": "lookup failed"}
	}
	if info == nil {
		return map[string]string{"error": "Game ID not found"}
	}
	return info
}

func (s *InfoServer) reply(conn net.Conn, payload interface{}) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		log.Printf("info reply encode: %v", err)
		return
	}
	encoded = append(encoded, '\n')
	if _, err := conn.Write(encoded); err != nil {
		log.Printf("info reply write: %v", err)
	}
}
