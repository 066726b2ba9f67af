package main

import "testing"

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand([]byte("SCORE,1"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Name != CmdScore || len(cmd.Args) != 1 || cmd.Args[0] != "1" {
		t.Errorf("unexpected command %+v", cmd)
	}
}

func TestParseCommandBareKeyword(t *testing.T) {
	cmd, err := ParseCommand([]byte("PLAYER_READY\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Name != CmdPlayerReady || len(cmd.Args) != 0 {
		t.Errorf("unexpected command %+v", cmd)
	}
}

func TestParseCommandEmpty(t *testing.T) {
	if _, err := ParseCommand([]byte("   \n")); err == nil {
		t.Error("blank datagram should be rejected")
	}
}

func TestPlayerIDArg(t *testing.T) {
	for _, arg := range []string{"1", "2", " 2 "} {
		if _, err := PlayerIDArg(arg); err != nil {
			t.Errorf("arg %q should parse: %v", arg, err)
		}
	}
	for _, arg := range []string{"0", "3", "-1", "abc", ""} {
		if _, err := PlayerIDArg(arg); err == nil {
			t.Errorf("arg %q should be rejected", arg)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatScoreUpdate(1, 250, 2750); got != "SCORE_UPDATE,1,250,2750" {
		t.Errorf("score update: %q", got)
	}
	if got := formatOverlay(-45); got != "OVERLAY,-45" {
		t.Errorf("overlay: %q", got)
	}
	if got := formatMotion(320, 240, 2); got != "320,240,2" {
		t.Errorf("motion: %q", got)
	}
	if got := formatWaiting(1); got != "WAITING,1" {
		t.Errorf("waiting: %q", got)
	}
	if got := formatPlayerConnected(2); got != "PLAYER_CONNECTED,2" {
		t.Errorf("player connected: %q", got)
	}
	if got := formatHighScores([]byte(`[]`)); got != "HIGH_SCORES,[]" {
		t.Errorf("high scores: %q", got)
	}
}
