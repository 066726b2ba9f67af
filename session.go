package main

import (
	"math/rand"
	"sync"
)

// SessionState is the lifecycle phase of the single game session.
type SessionState int

const (
	StateLobby      SessionState = 0
	StatePlaying    SessionState = 1
	StateGameOver   SessionState = 2
	StateHighScores SessionState = 3
)

func (s SessionState) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StatePlaying:
		return "playing"
	case StateGameOver:
		return "game_over"
	case StateHighScores:
		return "high_scores"
	default:
		return "unknown"
	}
}

// Only player slots 1 and 2 exist.
const (
	Player1 = 1
	Player2 = 2
)

const defaultHealth = 100

// Session is the single authoritative game instance. One exists per process;
// it is reset in place, never recreated. Every exported method takes the
// mutex and performs a whole command's worth of mutation atomically, so
// concurrent tickers and the dispatcher never observe a torn state.
type Session struct {
	mu sync.Mutex

	state        SessionState
	bossHP       int
	scores       map[int]int
	health       map[int]int
	overlayAngle int
	ready        map[int]bool
	reportedOver map[int]bool

	// resolved guards the game-over resolution: it flips true exactly once
	// per Playing phase and is cleared only on the next transition into
	// Playing. Extra SCORE or GAME_OVER messages after that are no-ops.
	resolved bool

	maxBossHP  int
	damageStep int
}

// SessionSnapshot is a consistent copy of the mutable fields, taken under
// the lock, for broadcasts and the spectator feed.
type SessionSnapshot struct {
	State        string      `json:"state" msgpack:"state"`
	BossHP       int         `json:"boss_hp" msgpack:"boss_hp"`
	Scores       map[int]int `json:"scores" msgpack:"scores"`
	Health       map[int]int `json:"health" msgpack:"health"`
	OverlayAngle int         `json:"overlay_angle" msgpack:"overlay_angle"`
	Ready        []int       `json:"ready" msgpack:"ready"`
}

// NewSession creates the session in its lobby defaults.
func NewSession(maxBossHP, damageStep int) *Session {
	s := &Session{
		maxBossHP:  maxBossHP,
		damageStep: damageStep,
	}
	s.resetLocked()
	return s
}

// resetLocked restores lobby defaults. Caller holds the lock (or owns the
// session exclusively, as in NewSession).
func (s *Session) resetLocked() {
	s.state = StateLobby
	s.bossHP = s.maxBossHP
	s.scores = map[int]int{Player1: 0, Player2: 0}
	s.health = map[int]int{Player1: defaultHealth, Player2: defaultHealth}
	s.ready = make(map[int]bool)
	s.reportedOver = make(map[int]bool)
	s.resolved = false
}

// Reset returns the session to lobby defaults from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// startPlayingLocked begins a fresh round: boss and scores reinitialized,
// ready set cleared, resolution guard re-armed.
func (s *Session) startPlayingLocked() {
	s.state = StatePlaying
	s.bossHP = s.maxBossHP
	s.scores = map[int]int{Player1: 0, Player2: 0}
	s.health = map[int]int{Player1: defaultHealth, Player2: defaultHealth}
	s.ready = make(map[int]bool)
	s.reportedOver = make(map[int]bool)
	s.resolved = false
}

// MarkReady records readiness for a player slot and starts the round once
// both slots are ready. It reports the ready count after the update and
// whether this call transitioned the session into Playing.
func (s *Session) MarkReady(playerID int) (readyCount int, started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if playerID != Player1 && playerID != Player2 {
		return len(s.ready), false
	}
	s.ready[playerID] = true
	if len(s.ready) == 2 && s.state != StatePlaying {
		s.startPlayingLocked()
		return 2, true
	}
	return len(s.ready), false
}

// ScoreResult reports the outcome of one accepted (or rejected) score event.
type ScoreResult struct {
	Accepted bool
	Score    int
	BossHP   int
	// Defeated is true only for the event that drove boss HP to zero.
	Defeated bool
}

// ApplyScore processes a SCORE event: outside Playing it is silently
// rejected; otherwise the player's score increments and the boss takes one
// damage step, clamped at zero. The defeat transition fires at most once.
func (s *Session) ApplyScore(playerID int) ScoreResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying || (playerID != Player1 && playerID != Player2) {
		return ScoreResult{}
	}

	s.scores[playerID]++
	if s.bossHP > 0 {
		s.bossHP -= s.damageStep
		if s.bossHP < 0 {
			s.bossHP = 0
		}
	}

	res := ScoreResult{
		Accepted: true,
		Score:    s.scores[playerID],
		BossHP:   s.bossHP,
	}
	if s.bossHP == 0 && !s.resolved {
		s.resolved = true
		s.state = StateGameOver
		res.Defeated = true
	}
	return res
}

// FinalResult carries the finalized scores for persistence.
type FinalResult struct {
	Player1Score int
	Player2Score int
}

// ReportGameOver records a player's remaining health from a client-side
// GAME_OVER report. The report that completes the pair ends the round:
// final score becomes attack score plus remaining health for each player.
// Reports after resolution only update the stored health and return
// ok=false, so the round resolves once no matter how often eliminated
// clients repeat themselves.
func (s *Session) ReportGameOver(playerID, remainingHealth int) (FinalResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if playerID != Player1 && playerID != Player2 {
		return FinalResult{}, false
	}
	if remainingHealth < 0 {
		remainingHealth = 0
	} else if remainingHealth > defaultHealth {
		remainingHealth = defaultHealth
	}
	s.health[playerID] = remainingHealth
	s.reportedOver[playerID] = true

	if s.resolved || len(s.reportedOver) < 2 {
		return FinalResult{}, false
	}
	s.resolved = true
	s.state = StateGameOver

	s.scores[Player1] += s.health[Player1]
	s.scores[Player2] += s.health[Player2]
	s.ready = make(map[int]bool)

	return FinalResult{
		Player1Score: s.scores[Player1],
		Player2Score: s.scores[Player2],
	}, true
}

// Finalize closes out a boss-defeat resolution: scores as they stand are the
// final scores, the ready set clears for the rematch flow.
func (s *Session) Finalize() FinalResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = make(map[int]bool)
	return FinalResult{
		Player1Score: s.scores[Player1],
		Player2Score: s.scores[Player2],
	}
}

// EnterHighScores moves a concluded round to the high-score screen.
func (s *Session) EnterHighScores() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateGameOver {
		s.state = StateHighScores
	}
}

// RandomizeOverlay draws a new target rotation in [-45, 45] if a round is
// in progress. The second return is false when not Playing (ticker no-op).
func (s *Session) RandomizeOverlay() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return 0, false
	}
	s.overlayAngle = rand.Intn(91) - 45
	return s.overlayAngle, true
}

// Playing reports whether a round is in progress.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StatePlaying
}

// State returns the current lifecycle phase.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BossHP returns the boss's remaining health.
func (s *Session) BossHP() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bossHP
}

// Snapshot copies the mutable fields under the lock.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		State:        s.state.String(),
		BossHP:       s.bossHP,
		Scores:       make(map[int]int, len(s.scores)),
		Health:       make(map[int]int, len(s.health)),
		OverlayAngle: s.overlayAngle,
		Ready:        make([]int, 0, len(s.ready)),
	}
	for id, sc := range s.scores {
		snap.Scores[id] = sc
	}
	for id, hp := range s.health {
		snap.Health[id] = hp
	}
	for id := Player1; id <= Player2; id++ {
		if s.ready[id] {
			snap.Ready = append(snap.Ready, id)
		}
	}
	return snap
}
