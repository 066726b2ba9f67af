package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality: the only label is the command keyword,
// which is a fixed set.
var (
	packetsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_packets_received_total",
		Help: "Datagrams handed to the dispatcher",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_commands_total",
		Help: "Commands dispatched, by command keyword",
	}, []string{"command"})

	malformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_malformed_commands_total",
		Help: "Commands dropped as malformed or unknown",
	})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_rate_limited_packets_total",
		Help: "Datagrams dropped by the per-sender rate limit",
	})

	broadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_broadcasts_total",
		Help: "Messages fanned out to all endpoints",
	})

	motionRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_motion_samples_relayed_total",
		Help: "Motion samples broadcast to clients",
	})

	motionDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_motion_samples_dropped_total",
		Help: "Ingested motion samples dropped because the feed was full",
	})

	gamesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_rounds_completed_total",
		Help: "Rounds resolved to game over",
	})

	bossHPGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_boss_hp",
		Help: "Boss health remaining",
	})

	spectatorsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_spectators_active",
		Help: "Currently connected WebSocket spectators",
	})
)
