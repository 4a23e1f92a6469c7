package engine

import (
	"time"

	"habitquest/internal/storage"
)

const (
	// RegenHP and RegenMP are restored on every completion, capped at the maximum.
	RegenHP = 10
	RegenMP = 5

	// DefaultHPPenaltyPercent is the share of maxHP lost when a quest fails.
	DefaultHPPenaltyPercent = 20
)

// NextXPThreshold returns floor(threshold * 1.2), computed in integers.
func NextXPThreshold(threshold int) int {
	next := threshold * 6 / 5
	if next < 1 {
		return 1
	}
	return next
}

// CompletionOutcome describes what ApplyCompletion changed.
type CompletionOutcome struct {
	XPGained     int
	LeveledUp    bool
	NewLevel     int
	Gains        storage.Attributes
	StreakBefore int
	StreakAfter  int
}

// ApplyCompletion applies the full reward bundle of one completed quest to p:
// xp, at most one level, hp/mp regeneration, attribute bonuses and the streak.
// period is the scheduling period containing now.
func ApplyCompletion(p *storage.Player, reward int, bonus storage.Attributes, now time.Time, period Period) CompletionOutcome {
	out := CompletionOutcome{
		XPGained:     reward,
		NewLevel:     p.Level,
		Gains:        bonus,
		StreakBefore: p.CurrentStreak,
	}

	p.XP += reward
	if p.XP >= p.XPToNextLevel {
		p.Level++
		p.XPToNextLevel = NextXPThreshold(p.XPToNextLevel)
		out.LeveledUp = true
		out.NewLevel = p.Level
	}

	p.HP = min(p.MaxHP, p.HP+RegenHP)
	p.MP = min(p.MaxMP, p.MP+RegenMP)

	p.Attributes = p.Attributes.Add(bonus)

	switch last := p.LastQuestCompletedAt; {
	case last != nil && period.Contains(*last):
		p.CurrentStreak = max(p.CurrentStreak, 1)
	case last != nil && period.Previous().Contains(*last):
		p.CurrentStreak++
	default:
		p.CurrentStreak = 1
	}
	p.LongestStreak = max(p.LongestStreak, p.CurrentStreak)
	t := now
	p.LastQuestCompletedAt = &t

	out.StreakAfter = p.CurrentStreak
	return out
}

// FailureOutcome describes what ApplyFailure took from the player.
type FailureOutcome struct {
	HPLost     int
	StreakLost int
}

// ApplyFailure breaks the streak and removes penaltyPercent of maxHP, never
// going below zero. Level and xp are left untouched.
func ApplyFailure(p *storage.Player, penaltyPercent int) FailureOutcome {
	loss := p.MaxHP * penaltyPercent / 100
	if loss > p.HP {
		loss = p.HP
	}
	if loss < 0 {
		loss = 0
	}
	out := FailureOutcome{HPLost: loss, StreakLost: p.CurrentStreak}

	p.HP -= loss
	p.CurrentStreak = 0
	return out
}
