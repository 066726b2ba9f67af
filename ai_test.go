package main

import "testing"

func evalBoss(health, maxHealth, distance int) []string {
	var sent []string
	boss := NewBoss(maxHealth, func(msg string) { sent = append(sent, msg) })
	boss.Health = health
	boss.EnemyDistance = distance
	DefaultBossTree().Execute(boss)
	return sent
}

func TestBossHeavyAttackWhenNearAndHealthy(t *testing.T) {
	sent := evalBoss(2000, 3000, 5)
	if len(sent) != 1 || sent[0] != "BOSS_ATTACK,heavy" {
		t.Errorf("expected heavy attack, got %v", sent)
	}
}

func TestBossNormalAttackWhenNearAndWounded(t *testing.T) {
	sent := evalBoss(1200, 3000, 5)
	if len(sent) != 1 || sent[0] != "BOSS_ATTACK,normal" {
		t.Errorf("expected normal attack, got %v", sent)
	}
}

func TestBossHealsWhenFarAndLow(t *testing.T) {
	var sent []string
	boss := NewBoss(3000, func(msg string) { sent = append(sent, msg) })
	boss.Health = 500
	boss.EnemyDistance = 15
	DefaultBossTree().Execute(boss)

	if len(sent) != 1 || sent[0] != "BOSS_HEAL" {
		t.Errorf("expected heal, got %v", sent)
	}
	if boss.Health != 700 {
		t.Errorf("heal should raise the entity's own copy by 200, got %d", boss.Health)
	}
}

func TestBossHealClampsAtMax(t *testing.T) {
	boss := NewBoss(900, func(string) {})
	boss.Health = 800 // low threshold is max/3 = 300, so force the action directly
	heal(boss)
	if boss.Health != 900 {
		t.Errorf("heal should clamp at max, got %d", boss.Health)
	}
}

func TestBossIdleWhenFarAndHealthy(t *testing.T) {
	sent := evalBoss(2000, 3000, 15)
	if len(sent) != 0 {
		t.Errorf("expected no action, got %v", sent)
	}
}

func TestSelectorStopsAtFirstSuccess(t *testing.T) {
	ran := []string{}
	mk := func(name string, ok bool) Node {
		return &Condition{Name: name, Test: func(*Boss) bool {
			ran = append(ran, name)
			return ok
		}}
	}
	sel := &Selector{Children: []Node{mk("a", false), mk("b", true), mk("c", true)}}
	if !sel.Execute(nil) {
		t.Error("selector with a succeeding child should succeed")
	}
	if len(ran) != 2 {
		t.Errorf("selector should stop after first success, ran %v", ran)
	}
}

func TestSequenceStopsAtFirstFailure(t *testing.T) {
	ran := []string{}
	mk := func(name string, ok bool) Node {
		return &Condition{Name: name, Test: func(*Boss) bool {
			ran = append(ran, name)
			return ok
		}}
	}
	seq := &Sequence{Children: []Node{mk("a", true), mk("b", false), mk("c", true)}}
	if seq.Execute(nil) {
		t.Error("sequence with a failing child should fail")
	}
	if len(ran) != 2 {
		t.Errorf("sequence should stop after first failure, ran %v", ran)
	}
}
