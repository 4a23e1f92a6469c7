package engine

import (
	"context"

	"habitquest/internal/storage"
)

// Achievement is a badge derived from player state. Achievements are computed,
// never stored.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

// AchievementChecker calculates which achievements the player has earned.
type AchievementChecker struct {
	player    *storage.Player
	completed int
}

func NewAchievementChecker(player *storage.Player, completedQuests int) *AchievementChecker {
	return &AchievementChecker{player: player, completed: completedQuests}
}

// GetAchievements returns all achievements with their earned status.
func (c *AchievementChecker) GetAchievements() []Achievement {
	return []Achievement{
		// Level milestones
		c.levelAchievement("apprentice", "Apprentice", "Reach level 2", "🌱", 2),
		c.levelAchievement("adventurer", "Adventurer", "Reach level 5", "🌿", 5),
		c.levelAchievement("veteran", "Veteran", "Reach level 10", "⭐", 10),
		c.levelAchievement("champion", "Champion", "Reach level 20", "💫", 20),

		// Streak milestones
		c.streakAchievement("on_fire", "On Fire", "Keep a 3-day streak", "🔥", 3),
		c.streakAchievement("unstoppable", "Unstoppable", "Keep a 7-day streak", "⚡", 7),
		c.streakAchievement("relentless", "Relentless", "Keep a 14-day streak", "🏔", 14),

		// Quest completion milestones
		c.questCountAchievement("first_quest", "First Quest", "Complete 1 quest", "✓", 1),
		c.questCountAchievement("dedicated", "Dedicated", "Complete 10 quests", "📋", 10),
		c.questCountAchievement("achiever", "Achiever", "Complete 50 quests", "🏅", 50),
		c.questCountAchievement("legend", "Legend", "Complete 100 quests", "🏆", 100),
	}
}

// CountEarned returns how many achievements have been earned.
func (c *AchievementChecker) CountEarned() int {
	count := 0
	for _, a := range c.GetAchievements() {
		if a.Earned {
			count++
		}
	}
	return count
}

// CountTotal returns total number of achievements.
func (c *AchievementChecker) CountTotal() int {
	return len(c.GetAchievements())
}

func (c *AchievementChecker) levelAchievement(id, name, desc, icon string, level int) Achievement {
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.player.Level >= level}
}

// Streak badges use the longest streak so they are never lost on failure.
func (c *AchievementChecker) streakAchievement(id, name, desc, icon string, days int) Achievement {
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.player.LongestStreak >= days}
}

func (c *AchievementChecker) questCountAchievement(id, name, desc, icon string, count int) Achievement {
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.completed >= count}
}

// newlyEarned returns the achievements earned in after but not in before.
func newlyEarned(before, after []Achievement) []Achievement {
	had := make(map[string]bool, len(before))
	for _, a := range before {
		if a.Earned {
			had[a.ID] = true
		}
	}
	var out []Achievement
	for _, a := range after {
		if a.Earned && !had[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// AchievementProgress returns a checker over the current state of userID.
func (s *Service) AchievementProgress(ctx context.Context, userID int64) (*AchievementChecker, error) {
	p, err := s.Player(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repos.Quests.CountCompleted(ctx, userID)
	if err != nil {
		return nil, storageErr("count completed quests", err)
	}
	return NewAchievementChecker(p, completed), nil
}

// Achievements returns the achievement list for userID.
func (s *Service) Achievements(ctx context.Context, userID int64) ([]Achievement, error) {
	c, err := s.AchievementProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.GetAchievements(), nil
}
