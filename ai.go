package main

import "math/rand"

// The boss AI is a behavior tree: composite nodes evaluated once per AI
// tick, each reporting success or failure. Nodes share no state beyond the
// boss's own fields.

// Node is one behavior tree node.
type Node interface {
	Execute(b *Boss) bool
}

// Selector succeeds on the first child that succeeds.
type Selector struct {
	Name     string
	Children []Node
}

func (n *Selector) Execute(b *Boss) bool {
	for _, child := range n.Children {
		if child.Execute(b) {
			return true
		}
	}
	return false
}

// Sequence fails on the first child that fails.
type Sequence struct {
	Name     string
	Children []Node
}

func (n *Sequence) Execute(b *Boss) bool {
	for _, child := range n.Children {
		if !child.Execute(b) {
			return false
		}
	}
	return true
}

// Condition evaluates a predicate against the boss.
type Condition struct {
	Name string
	Test func(b *Boss) bool
}

func (n *Condition) Execute(b *Boss) bool {
	return n.Test(b)
}

// Action performs a side effect and always succeeds.
type Action struct {
	Name string
	Run  func(b *Boss)
}

func (n *Action) Execute(b *Boss) bool {
	n.Run(b)
	return true
}

// Boss is the AI's view of the boss entity. Health mirrors the session's
// boss HP at each tick; the heal action raises only this local copy, since
// authoritative boss HP never increases during a round.
type Boss struct {
	Health        int
	MaxHealth     int
	EnemyDistance int
	send          func(msg string)
}

// NewBoss creates the AI entity with a broadcast hook.
func NewBoss(maxHealth int, send func(msg string)) *Boss {
	return &Boss{Health: maxHealth, MaxHealth: maxHealth, send: send}
}

// Observe refreshes the entity from the authoritative HP. The server keeps
// no positions, so enemy distance is re-rolled per tick the way the
// prototype stubbed it.
func (b *Boss) Observe(health int) {
	b.Health = health
	b.EnemyDistance = rand.Intn(20)
}

func (b *Boss) sendMessage(msg string) {
	if b.send != nil {
		b.send(msg)
	}
}

func enemyNear(b *Boss) bool  { return b.EnemyDistance < 10 }
func highHealth(b *Boss) bool { return b.Health > b.MaxHealth/2 }
func lowHealth(b *Boss) bool  { return b.Health < b.MaxHealth/3 }

func heavyAttack(b *Boss) {
	b.sendMessage(EvtBossAttack + ",heavy")
}

func normalAttack(b *Boss) {
	b.sendMessage(EvtBossAttack + ",normal")
}

func heal(b *Boss) {
	b.sendMessage(EvtBossHeal)
	b.Health += 200
	if b.Health > b.MaxHealth {
		b.Health = b.MaxHealth
	}
}

// DefaultBossTree builds the attack/heal priority tree: heavy attack when
// the enemy is near and health is high, otherwise a normal attack when the
// enemy is near, otherwise heal when health is low.
func DefaultBossTree() Node {
	return &Selector{
		Name: "Root",
		Children: []Node{
			&Sequence{
				Name: "Heavy Attack",
				Children: []Node{
					&Condition{Name: "Enemy Near", Test: enemyNear},
					&Condition{Name: "High Health", Test: highHealth},
					&Action{Name: "Heavy Attack", Run: heavyAttack},
				},
			},
			&Sequence{
				Name: "Normal Attack",
				Children: []Node{
					&Condition{Name: "Enemy Near", Test: enemyNear},
					&Action{Name: "Normal Attack", Run: normalAttack},
				},
			},
			&Sequence{
				Name: "Heal",
				Children: []Node{
					&Condition{Name: "Low Health", Test: lowHealth},
					&Action{Name: "Heal", Run: heal},
				},
			},
		},
	}
}
