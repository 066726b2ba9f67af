package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"
)

// ResultStore is the persistence collaborator: one save per concluded game,
// leaderboard retrieval keyed by the saved game id.
type ResultStore interface {
	SaveResult(player1Score, player2Score int) (int64, error)
	HighScores(latestGameID int64) ([]LeaderboardEntry, error)
}

// GameServer owns the authoritative session and is the single point of
// truth-mutation: the UDP receive loop feeds HandleDatagram, the ticker
// loops read the session and drive the broadcaster. All session access
// funnels through Session's own mutex.
type GameServer struct {
	cfg       Config
	session   *Session
	registry  *Registry
	broadcast *Broadcaster
	store     ResultStore
	motion    MotionSource
	analytics *Analytics
}

// NewGameServer wires the game server. store, motion and analytics may be
// nil in tests.
func NewGameServer(cfg Config, session *Session, registry *Registry, broadcast *Broadcaster, store ResultStore, motion MotionSource, analytics *Analytics) *GameServer {
	return &GameServer{
		cfg:       cfg,
		session:   session,
		registry:  registry,
		broadcast: broadcast,
		store:     store,
		motion:    motion,
		analytics: analytics,
	}
}

// HandleDatagram parses one inbound command and applies it. Malformed or
// out-of-order messages are logged and dropped; datagrams are never
// acknowledged, so there is no error reply. Nothing here is fatal.
func (gs *GameServer) HandleDatagram(raw []byte, addr *net.UDPAddr) {
	packetsReceived.Inc()

	cmd, err := ParseCommand(raw)
	if err != nil {
		malformedTotal.Inc()
		return
	}

	switch cmd.Name {
	case CmdPlayerID:
		gs.handlePlayerID(cmd, addr)
	case CmdPlayerReady:
		gs.handlePlayerReady(addr)
	case CmdResetGame:
		gs.handleReset()
	case CmdScore:
		gs.handleScore(cmd)
	case CmdGameOver:
		gs.handleGameOver(cmd)
	case CmdPlayAgain:
		gs.handlePlayAgain(addr)
	default:
		malformedTotal.Inc()
		log.Printf("dropping unknown command %q from %s", cmd.Name, addr)
		return
	}
	commandsTotal.WithLabelValues(cmd.Name).Inc()
}

func (gs *GameServer) handlePlayerID(cmd Command, addr *net.UDPAddr) {
	if len(cmd.Args) != 1 {
		malformedTotal.Inc()
		log.Printf("malformed PLAYER_ID from %s: %v", addr, cmd.Args)
		return
	}
	id, err := PlayerIDArg(cmd.Args[0])
	if err != nil {
		malformedTotal.Inc()
		log.Printf("malformed PLAYER_ID from %s: %v", addr, err)
		return
	}

	gs.registry.Bind(addr, id)
	log.Printf("player %d joined from %s", id, addr)
	gs.broadcast.Broadcast(formatPlayerConnected(id))
	gs.track(EvtPlayerJoin, id, "")

	if _, started := gs.session.MarkReady(id); started {
		gs.startRound()
	}
}

func (gs *GameServer) handlePlayerReady(addr *net.UDPAddr) {
	id, ok := gs.registry.PlayerAt(addr)
	if !ok {
		log.Printf("PLAYER_READY from unbound endpoint %s", addr)
		return
	}
	if _, started := gs.session.MarkReady(id); started {
		gs.startRound()
	}
}

func (gs *GameServer) handleReset() {
	log.Printf("resetting game state")
	gs.session.Reset()
	bossHPGauge.Set(float64(gs.cfg.MaxBossHP))
	gs.broadcast.Snapshot(gs.session.Snapshot())
}

func (gs *GameServer) handleScore(cmd Command) {
	if len(cmd.Args) != 1 {
		malformedTotal.Inc()
		log.Printf("malformed SCORE: %v", cmd.Args)
		return
	}
	id, err := PlayerIDArg(cmd.Args[0])
	if err != nil {
		malformedTotal.Inc()
		log.Printf("malformed SCORE: %v", err)
		return
	}

	res := gs.session.ApplyScore(id)
	if !res.Accepted {
		// Fire-and-forget semantics: a SCORE outside a round is ignored.
		return
	}

	bossHPGauge.Set(float64(res.BossHP))
	gs.broadcast.ScoreUpdate(id, res.Score, res.BossHP)
	gs.track(EvtScoreAccepted, id, fmt.Sprintf(`{"score":%d,"boss_hp":%d}`, res.Score, res.BossHP))

	if res.Defeated {
		log.Printf("boss defeated, resolving round")
		gs.broadcast.Lifecycle(EvtGameOver)
		gs.concludeRound(gs.session.Finalize())
	}
}

func (gs *GameServer) handleGameOver(cmd Command) {
	if len(cmd.Args) != 2 {
		malformedTotal.Inc()
		log.Printf("malformed GAME_OVER: %v", cmd.Args)
		return
	}
	id, err := PlayerIDArg(cmd.Args[0])
	if err != nil {
		malformedTotal.Inc()
		log.Printf("malformed GAME_OVER: %v", err)
		return
	}
	health, err := strconv.Atoi(strings.TrimSpace(cmd.Args[1]))
	if err != nil {
		malformedTotal.Inc()
		log.Printf("malformed GAME_OVER health %q: %v", cmd.Args[1], err)
		return
	}

	final, terminating := gs.session.ReportGameOver(id, health)
	if !terminating {
		return
	}
	log.Printf("player %d reported game over with %d health, resolving round", id, health)
	gs.concludeRound(final)
}

func (gs *GameServer) handlePlayAgain(addr *net.UDPAddr) {
	// The declared id in the message is ignored; the binding decides who is
	// asking, so a spoofed id cannot ready up the other slot.
	id, ok := gs.registry.PlayerAt(addr)
	if !ok {
		log.Printf("PLAY_AGAIN from unbound endpoint %s", addr)
		return
	}

	count, started := gs.session.MarkReady(id)
	if started {
		gs.startRound()
		return
	}
	if count == 1 {
		gs.broadcast.Broadcast(formatWaiting(id))
	}
}

// startRound announces a fresh round. The session has already reset its
// fields inside the ready transition.
func (gs *GameServer) startRound() {
	log.Printf("game started")
	bossHPGauge.Set(float64(gs.cfg.MaxBossHP))
	gs.broadcast.Lifecycle(EvtGameStart)
	gs.track(EvtRoundStart, 0, "")
	gs.broadcast.Snapshot(gs.session.Snapshot())
}

// concludeRound runs exactly once per round (its callers are gated on the
// session's resolved flag): persist the result, fetch the leaderboard,
// broadcast HIGH_SCORES, move to the high-score screen. Persistence and
// the query run outside the session lock; failures are logged and the
// session still moves on with whatever leaderboard is available.
func (gs *GameServer) concludeRound(final FinalResult) {
	gamesCompleted.Inc()
	gs.track(EvtRoundEnd, 0, fmt.Sprintf(`{"p1":%d,"p2":%d}`, final.Player1Score, final.Player2Score))

	var entries []LeaderboardEntry
	if gs.store != nil {
		gameID, err := gs.store.SaveResult(final.Player1Score, final.Player2Score)
		if err != nil {
			log.Printf("save game result: %v", err)
		}
		entries, err = gs.store.HighScores(gameID)
		if err != nil {
			log.Printf("fetch high scores: %v", err)
			entries = nil
		}
	}

	gs.broadcast.HighScores(entries)
	gs.session.EnterHighScores()
	gs.broadcast.Snapshot(gs.session.Snapshot())
}

func (gs *GameServer) track(evtType string, playerID int, data string) {
	if gs.analytics != nil {
		gs.analytics.Track(evtType, playerID, data)
	}
}

// RunOverlayLoop rotates the overlay target once per interval while a round
// is in progress. It runs for the life of the process and becomes a no-op
// in any other state.
func (gs *GameServer) RunOverlayLoop(ctx context.Context) {
	ticker := time.NewTicker(gs.cfg.OverlayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if angle, ok := gs.session.RandomizeOverlay(); ok {
				gs.broadcast.Overlay(angle)
			}
		case <-ctx.Done():
			return
		}
	}
}

// RunMotionLoop relays one motion sample per interval while a round is in
// progress. An exhausted source skips the tick.
func (gs *GameServer) RunMotionLoop(ctx context.Context) {
	ticker := time.NewTicker(gs.cfg.MotionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !gs.session.Playing() || gs.motion == nil {
				continue
			}
			if sample, ok := gs.motion.Next(); ok {
				gs.broadcast.Motion(sample)
			}
		case <-ctx.Done():
			return
		}
	}
}

// RunBossAILoop evaluates the boss behavior tree once per interval while a
// round is in progress.
func (gs *GameServer) RunBossAILoop(ctx context.Context) {
	boss := NewBoss(gs.cfg.MaxBossHP, func(msg string) { gs.broadcast.Broadcast(msg) })
	tree := DefaultBossTree()

	ticker := time.NewTicker(gs.cfg.BossAIInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !gs.session.Playing() {
				continue
			}
			boss.Observe(gs.session.BossHP())
			tree.Execute(boss)
		case <-ctx.Done():
			return
		}
	}
}
