package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"
)

func startInfoServer(t *testing.T, feed *FeedSource) (*InfoServer, net.Conn, *bufio.Reader) {
	t.Helper()
	db := openTestDB(t)
	if err := db.SeedGameInfo(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv, err := NewInfoServer("127.0.0.1:0", db, feed)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)
	t.Cleanup(cancel)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return srv, conn, bufio.NewReader(conn)
}

func TestInfoServerGameLookup(t *testing.T) {
	_, conn, reader := startInfoServer(t, nil)

	fmt.Fprintf(conn, "2\n")
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var info GameInfoRow
	if err := json.Unmarshal(line, &info); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	if info.GameID != 2 || info.Name != "Dragon Quest" || info.Genre != "RPG" {
		t.Errorf("unexpected catalog reply %+v", info)
	}
}

func TestInfoServerUnknownGame(t *testing.T) {
	_, conn, reader := startInfoServer(t, nil)

	fmt.Fprintf(conn, "42\n")
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var reply map[string]string
	if err := json.Unmarshal(line, &reply); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	if reply["error"] != "Game ID not found" {
		t.Errorf("expected not-found error, got %v", reply)
	}
}

func TestInfoServerInvalidRequest(t *testing.T) {
	_, conn, reader := startInfoServer(t, nil)

	fmt.Fprintf(conn, "not a number\n")
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var reply map[string]string
	if err := json.Unmarshal(line, &reply); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	if reply["error"] != "invalid request" {
		t.Errorf("expected invalid-request error, got %v", reply)
	}
}

func TestInfoServerMotionIngestion(t *testing.T) {
	feed := NewFeedSource(8)
	_, conn, reader := startInfoServer(t, feed)

	fmt.Fprintf(conn, "[320, 240, 1]\n")
	// Motion frames get no reply; a lookup after them proves the line was
	// consumed before the feed is inspected.
	fmt.Fprintf(conn, "1\n")
	if _, err := reader.ReadBytes('\n'); err != nil {
		t.Fatalf("read: %v", err)
	}

	sample, ok := feed.Next()
	if !ok {
		t.Fatal("expected a sample in the feed")
	}
	if sample.X != 320 || sample.Y != 240 || sample.PlayerID != 1 {
		t.Errorf("unexpected sample %+v", sample)
	}
}

func TestInfoServerRejectsBadMotionFrames(t *testing.T) {
	feed := NewFeedSource(8)
	_, conn, reader := startInfoServer(t, feed)

	fmt.Fprintf(conn, "[1, 2]\n")       // wrong arity
	fmt.Fprintf(conn, "[1, 2, 7]\n")    // player out of range
	fmt.Fprintf(conn, "[\"a\", 2, 1]\n") // wrong type
	fmt.Fprintf(conn, "1\n")
	if _, err := reader.ReadBytes('\n'); err != nil {
		t.Fatalf("read: %v", err)
	}

	if _, ok := feed.Next(); ok {
		t.Error("malformed frames must not reach the feed")
	}
}

func TestInfoServerExitClosesConnection(t *testing.T) {
	_, conn, reader := startInfoServer(t, nil)

	fmt.Fprintf(conn, "exit\n")
	if _, err := reader.ReadBytes('\n'); err == nil {
		t.Error("connection should close after exit")
	}
}
