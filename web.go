package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	qrcode "github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures the HTTP surface: spectator feed, leaderboard,
// join QR code, metrics, health, and the token-guarded admin endpoints.
func SetupRoutes(cfg Config, session *Session, registry *Registry, hub *SpectatorHub, db *DB, analytics *Analytics, auth *AdminAuth) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	// WebSocket spectator feed
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if !hub.CanAccept() {
			http.Error(w, "too many spectators", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}
		client := NewSpectator(hub, conn)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()

		// New spectators get the current state immediately
		hub.SendSnapshot(session.Snapshot())
	})

	// Join code for phone accelerometer clients
	mux.HandleFunc("/qr", func(w http.ResponseWriter, r *http.Request) {
		join := "udp://" + joinHost(cfg.PublicHost, cfg.UDPAddr)
		png, err := qrcode.Encode(join, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	mux.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			http.Error(w, "no store", http.StatusServiceUnavailable)
			return
		}
		var gameID int64
		if v := r.URL.Query().Get("game_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				http.Error(w, "bad game_id", http.StatusBadRequest)
				return
			}
			gameID = id
		}
		entries, err := db.HighScores(gameID)
		if err != nil {
			log.Printf("leaderboard query: %v", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []LeaderboardEntry{}
		}
		writeJSON(w, entries)
	})

	mux.HandleFunc("/admin/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		token, err := auth.Login(req.Key, extractIP(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]string{"token": token})
	})

	mux.HandleFunc("/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, auth) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		stats := map[string]interface{}{
			"session":    session.Snapshot(),
			"players":    registry.Count(),
			"spectators": hub.Count(),
		}
		if db != nil {
			if n, err := db.ResultCount(); err == nil {
				stats["games_recorded"] = n
			}
		}
		if analytics != nil {
			if counts, err := analytics.EventCounts(7); err == nil {
				stats["events_7d"] = counts
			}
		}
		writeJSON(w, stats)
	})

	return mux
}

func authorized(r *http.Request, auth *AdminAuth) bool {
	if auth == nil || !auth.Enabled() {
		return false
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return auth.ValidateToken(token) == nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

// joinHost combines the advertised host with the listen address's port.
func joinHost(host, listenAddr string) string {
	_, port, err := net.SplitHostPort(listenAddr)
	if err != nil || port == "" {
		return host
	}
	return net.JoinHostPort(host, port)
}
