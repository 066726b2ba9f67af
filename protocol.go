package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Client -> server commands (UDP, comma-separated UTF-8 text)
const (
	CmdPlayerID    = "PLAYER_ID"    // PLAYER_ID,<id>
	CmdPlayerReady = "PLAYER_READY" // PLAYER_READY
	CmdResetGame   = "RESET_GAME"   // RESET_GAME
	CmdScore       = "SCORE"        // SCORE,<id>
	CmdGameOver    = "GAME_OVER"    // GAME_OVER,<id>,<remaining_health>
	CmdPlayAgain   = "PLAY_AGAIN"   // PLAY_AGAIN,<id>
)

// Server -> client events
const (
	EvtGameStart       = "GAME_START"
	EvtScoreUpdate     = "SCORE_UPDATE"     // SCORE_UPDATE,<id>,<score>,<boss_hp>
	EvtOverlay         = "OVERLAY"          // OVERLAY,<angle>
	EvtHighScores      = "HIGH_SCORES"      // HIGH_SCORES,<json array>
	EvtWaiting         = "WAITING"          // WAITING,<id>
	EvtPlayerConnected = "PLAYER_CONNECTED" // PLAYER_CONNECTED,<id>
	EvtGameOver        = "GAME_OVER"        // bare lifecycle notice
	EvtBossAttack      = "BOSS_ATTACK"      // BOSS_ATTACK,heavy|normal
	EvtBossHeal        = "BOSS_HEAL"
)

// Command is one parsed inbound message.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a raw datagram into a command name and arguments.
// Motion relay frames are outbound only, so everything inbound is expected
// to lead with a command keyword.
func ParseCommand(raw []byte) (Command, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return Command{}, fmt.Errorf("empty message")
	}
	parts := strings.Split(text, ",")
	return Command{Name: parts[0], Args: parts[1:]}, nil
}

// PlayerIDArg parses a player slot argument, accepting only 1 or 2.
func PlayerIDArg(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("player id %q: %w", arg, err)
	}
	if id != Player1 && id != Player2 {
		return 0, fmt.Errorf("player id %d out of range", id)
	}
	return id, nil
}

func formatScoreUpdate(playerID, score, bossHP int) string {
	return fmt.Sprintf("%s,%d,%d,%d", EvtScoreUpdate, playerID, score, bossHP)
}

func formatOverlay(angle int) string {
	return fmt.Sprintf("%s,%d", EvtOverlay, angle)
}

func formatMotion(x, y, playerID int) string {
	return fmt.Sprintf("%d,%d,%d", x, y, playerID)
}

func formatWaiting(playerID int) string {
	return fmt.Sprintf("%s,%d", EvtWaiting, playerID)
}

func formatPlayerConnected(playerID int) string {
	return fmt.Sprintf("%s,%d", EvtPlayerConnected, playerID)
}

func formatHighScores(encoded []byte) string {
	return EvtHighScores + "," + string(encoded)
}
