package main

import (
	"encoding/json"
	"log"
	"net"
)

// Sender delivers one datagram to one endpoint, best-effort.
type Sender interface {
	SendTo(addr *net.UDPAddr, payload []byte) error
}

// Broadcaster fans state-derived messages out to every bound endpoint.
// Delivery is fire-and-forget: no confirmation, no retry, and a failed send
// to one peer never prevents the others from receiving. Wire traffic is
// mirrored to the WebSocket spectator hub when one is attached.
type Broadcaster struct {
	sender     Sender
	registry   *Registry
	spectators *SpectatorHub
}

// NewBroadcaster wires a broadcaster to its datagram sender and registry.
// spectators may be nil.
func NewBroadcaster(sender Sender, registry *Registry, spectators *SpectatorHub) *Broadcaster {
	return &Broadcaster{sender: sender, registry: registry, spectators: spectators}
}

// Broadcast sends a wire message to all bound endpoints.
func (b *Broadcaster) Broadcast(msg string) {
	payload := []byte(msg)
	for _, addr := range b.registry.Endpoints() {
		if err := b.sender.SendTo(addr, payload); err != nil {
			log.Printf("broadcast to %s: %v", addr, err)
		}
	}
	broadcastsTotal.Inc()
	if b.spectators != nil {
		b.spectators.RelayWire(msg)
	}
}

// ScoreUpdate announces an accepted score and the boss's remaining health.
func (b *Broadcaster) ScoreUpdate(playerID, score, bossHP int) {
	b.Broadcast(formatScoreUpdate(playerID, score, bossHP))
}

// Overlay announces the new target rotation.
func (b *Broadcaster) Overlay(angle int) {
	b.Broadcast(formatOverlay(angle))
}

// Motion relays one accelerometer sample verbatim: three unlabeled numeric
// fields, no command keyword.
func (b *Broadcaster) Motion(sample MotionSample) {
	b.Broadcast(formatMotion(sample.X, sample.Y, sample.PlayerID))
	motionRelayed.Inc()
}

// Lifecycle announces a bare lifecycle event such as GAME_START or the
// terminal GAME_OVER notice.
func (b *Broadcaster) Lifecycle(event string) {
	b.Broadcast(event)
}

// HighScores encodes and broadcasts the end-of-game leaderboard. An
// encoding failure is logged and swallowed; the session still moves on.
func (b *Broadcaster) HighScores(entries []LeaderboardEntry) {
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		log.Printf("high scores encode: %v", err)
		return
	}
	b.Broadcast(formatHighScores(encoded))
}

// Snapshot pushes a binary session snapshot to spectators only; game
// clients never receive it.
func (b *Broadcaster) Snapshot(snap SessionSnapshot) {
	if b.spectators != nil {
		b.spectators.SendSnapshot(snap)
	}
}
