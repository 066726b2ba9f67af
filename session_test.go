package main

import "testing"

func TestSessionStartsInLobbyDefaults(t *testing.T) {
	s := NewSession(3000, 10)

	if s.State() != StateLobby {
		t.Errorf("expected lobby, got %v", s.State())
	}
	snap := s.Snapshot()
	if snap.BossHP != 3000 {
		t.Errorf("expected boss hp 3000, got %d", snap.BossHP)
	}
	if snap.Scores[Player1] != 0 || snap.Scores[Player2] != 0 {
		t.Errorf("expected zero scores, got %v", snap.Scores)
	}
	if len(snap.Ready) != 0 {
		t.Errorf("expected empty ready set, got %v", snap.Ready)
	}
}

func TestSessionStartsOnlyAtTwoReady(t *testing.T) {
	s := NewSession(3000, 10)

	if count, started := s.MarkReady(Player1); started || count != 1 {
		t.Errorf("one ready player should not start: count=%d started=%v", count, started)
	}
	// Same player again is not a second slot
	if _, started := s.MarkReady(Player1); started {
		t.Error("duplicate ready should not start the round")
	}
	count, started := s.MarkReady(Player2)
	if !started || count != 2 {
		t.Errorf("two ready players should start: count=%d started=%v", count, started)
	}
	if s.State() != StatePlaying {
		t.Errorf("expected playing, got %v", s.State())
	}
	// Round start clears the ready set
	if len(s.Snapshot().Ready) != 0 {
		t.Error("ready set should clear on round start")
	}
}

func TestSessionRejectsInvalidSlot(t *testing.T) {
	s := NewSession(3000, 10)
	if _, started := s.MarkReady(3); started {
		t.Error("slot 3 must not exist")
	}
	if res := s.ApplyScore(0); res.Accepted {
		t.Error("slot 0 must not score")
	}
}

func TestSessionScoreDepletesBoss(t *testing.T) {
	s := NewSession(3000, 10)
	s.MarkReady(Player1)
	s.MarkReady(Player2)

	for i := 1; i <= 5; i++ {
		res := s.ApplyScore(Player1)
		if !res.Accepted {
			t.Fatalf("score %d rejected", i)
		}
		if res.Score != i {
			t.Errorf("expected score %d, got %d", i, res.Score)
		}
		if res.BossHP != 3000-10*i {
			t.Errorf("expected boss hp %d, got %d", 3000-10*i, res.BossHP)
		}
	}
}

func TestSessionScoreIgnoredOutsideRound(t *testing.T) {
	s := NewSession(3000, 10)
	if res := s.ApplyScore(Player1); res.Accepted {
		t.Error("score in lobby should be rejected")
	}
	if s.Snapshot().Scores[Player1] != 0 {
		t.Error("rejected score must not change state")
	}
}

func TestSessionBossHPNeverNegative(t *testing.T) {
	s := NewSession(30, 10)
	s.MarkReady(Player1)
	s.MarkReady(Player2)

	var defeats int
	for i := 0; i < 10; i++ {
		res := s.ApplyScore(Player1)
		if res.BossHP < 0 {
			t.Fatalf("boss hp went negative: %d", res.BossHP)
		}
		if res.Defeated {
			defeats++
		}
	}
	if defeats != 1 {
		t.Errorf("defeat should fire exactly once, fired %d times", defeats)
	}
	if s.BossHP() != 0 {
		t.Errorf("expected boss hp 0, got %d", s.BossHP())
	}
}

func TestSessionDefeatAtExactZero(t *testing.T) {
	s := NewSession(3000, 10)
	s.MarkReady(Player1)
	s.MarkReady(Player2)

	for i := 1; i <= 299; i++ {
		if res := s.ApplyScore(Player1); res.Defeated {
			t.Fatalf("defeated early at score %d", i)
		}
	}
	res := s.ApplyScore(Player1)
	if !res.Defeated || res.BossHP != 0 {
		t.Errorf("300th score should defeat at hp 0, got defeated=%v hp=%d", res.Defeated, res.BossHP)
	}
	// State left Playing, so further scores are no-ops
	if res := s.ApplyScore(Player1); res.Accepted {
		t.Error("score after defeat should be rejected")
	}
}

func TestSessionGameOverResolvesOnSecondReport(t *testing.T) {
	s := NewSession(3000, 10)
	s.MarkReady(Player1)
	s.MarkReady(Player2)
	for i := 0; i < 7; i++ {
		s.ApplyScore(Player1)
	}
	for i := 0; i < 3; i++ {
		s.ApplyScore(Player2)
	}

	if _, ok := s.ReportGameOver(Player1, 40); ok {
		t.Fatal("first report must not resolve the round")
	}
	final, ok := s.ReportGameOver(Player2, 0)
	if !ok {
		t.Fatal("second report must resolve the round")
	}
	if final.Player1Score != 7+40 {
		t.Errorf("expected player 1 final %d, got %d", 47, final.Player1Score)
	}
	if final.Player2Score != 3+0 {
		t.Errorf("expected player 2 final %d, got %d", 3, final.Player2Score)
	}
	// Repeats from eliminated clients change nothing
	if _, ok := s.ReportGameOver(Player1, 40); ok {
		t.Error("report after resolution must be a no-op")
	}
}

func TestSessionHealthReportClamped(t *testing.T) {
	s := NewSession(3000, 10)
	s.ReportGameOver(Player1, -5)
	s.ReportGameOver(Player2, 400)
	snap := s.Snapshot()
	if snap.Health[Player1] != 0 || snap.Health[Player2] != 100 {
		t.Errorf("health not clamped: %v", snap.Health)
	}
}

func TestSessionResetRestoresLobby(t *testing.T) {
	s := NewSession(3000, 10)
	s.MarkReady(Player1)
	s.MarkReady(Player2)
	s.ApplyScore(Player1)
	s.Reset()

	snap := s.Snapshot()
	if s.State() != StateLobby || snap.BossHP != 3000 {
		t.Errorf("reset should restore lobby defaults, got %v hp=%d", s.State(), snap.BossHP)
	}
	if snap.Scores[Player1] != 0 || snap.Scores[Player2] != 0 {
		t.Errorf("reset should zero scores, got %v", snap.Scores)
	}
	if len(snap.Ready) != 0 {
		t.Error("reset should clear ready set")
	}
}

func TestSessionRematchRearmsResolution(t *testing.T) {
	s := NewSession(30, 10)
	s.MarkReady(Player1)
	s.MarkReady(Player2)
	for i := 0; i < 3; i++ {
		s.ApplyScore(Player1)
	}
	s.Finalize()
	s.EnterHighScores()
	if s.State() != StateHighScores {
		t.Fatalf("expected high scores, got %v", s.State())
	}

	// Both players ready again: fresh round, defeat can fire again
	s.MarkReady(Player1)
	_, started := s.MarkReady(Player2)
	if !started {
		t.Fatal("rematch should start round")
	}
	if s.BossHP() != 30 {
		t.Errorf("rematch should restore boss hp, got %d", s.BossHP())
	}
	var defeats int
	for i := 0; i < 3; i++ {
		if s.ApplyScore(Player2).Defeated {
			defeats++
		}
	}
	if defeats != 1 {
		t.Errorf("second round defeat should fire once, fired %d", defeats)
	}
}

func TestSessionOverlayOnlyWhilePlaying(t *testing.T) {
	s := NewSession(3000, 10)
	if _, ok := s.RandomizeOverlay(); ok {
		t.Error("overlay should not rotate in lobby")
	}
	s.MarkReady(Player1)
	s.MarkReady(Player2)
	for i := 0; i < 50; i++ {
		angle, ok := s.RandomizeOverlay()
		if !ok {
			t.Fatal("overlay should rotate while playing")
		}
		if angle < -45 || angle > 45 {
			t.Fatalf("angle %d outside [-45,45]", angle)
		}
	}
}
