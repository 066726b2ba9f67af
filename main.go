package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := LoadConfig()

	udpAddr := flag.String("udp", cfg.UDPAddr, "game protocol listen address (UDP)")
	tcpAddr := flag.String("tcp", cfg.TCPAddr, "game info / ingestion listen address (TCP)")
	httpAddr := flag.String("http", cfg.HTTPAddr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	cfg.UDPAddr = *udpAddr
	cfg.TCPAddr = *tcpAddr
	cfg.HTTPAddr = *httpAddr
	cfg.DBPath = *dbPath

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.SeedGameInfo(); err != nil {
		log.Printf("seed game info: %v", err)
	}

	analytics := NewAnalytics(db)
	defer analytics.Stop()

	hub := NewSpectatorHub()
	go hub.Run()

	session := NewSession(cfg.MaxBossHP, cfg.DamageStep)
	bossHPGauge.Set(float64(cfg.MaxBossHP))
	registry := NewRegistry()

	udpServer, err := NewUDPServer(cfg.UDPAddr)
	if err != nil {
		log.Fatalf("bind udp %s: %v", cfg.UDPAddr, err)
	}
	defer udpServer.Close()

	broadcaster := NewBroadcaster(udpServer, registry, hub)

	var feed *FeedSource
	var motion MotionSource
	if cfg.MotionSource == "live" {
		feed = NewFeedSource(256)
		motion = feed
		log.Printf("motion relay: live accelerometer feed")
	} else {
		motion = NewSimulatedSource(cfg.SimSamples)
		log.Printf("motion relay: %d simulated samples", cfg.SimSamples)
	}

	game := NewGameServer(cfg, session, registry, broadcaster, db, motion, analytics)

	infoServer, err := NewInfoServer(cfg.TCPAddr, db, feed)
	if err != nil {
		log.Fatalf("bind tcp %s: %v", cfg.TCPAddr, err)
	}
	defer infoServer.Close()

	auth := NewAdminAuth(db, cfg.AdminKey)
	if !auth.Enabled() {
		log.Printf("admin endpoints disabled (no ADMIN_KEY)")
	}
	mux := SetupRoutes(cfg, session, registry, hub, db, analytics, auth)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go udpServer.Run(ctx, game.HandleDatagram)
	go game.RunOverlayLoop(ctx)
	go game.RunMotionLoop(ctx)
	if cfg.BossAI {
		log.Printf("boss AI enabled, tick %s", cfg.BossAIInterval)
		go game.RunBossAILoop(ctx)
	}
	go infoServer.Run(ctx)

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		log.Printf("HTTP server on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	log.Printf("UDP game server on %s", cfg.UDPAddr)
	log.Printf("TCP info server on %s", cfg.TCPAddr)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	cancel()
	httpServer.Close()
}
