package engine

import (
	"context"
	"time"

	"habitquest/internal/storage"
)

const (
	// WeeklyBaseBonus is granted regardless of how many quests were completed.
	WeeklyBaseBonus = 100
	// WeeklyPerQuestXP is credited per completed quest, both as earned xp and as bonus.
	WeeklyPerQuestXP = 50

	DefaultWeeklyHistorySize = 10
)

// ComputeWeeklyReward returns the flat xp credit and the bonus for n
// completed quests.
func ComputeWeeklyReward(questsCompleted int) (totalXP, bonusXP int) {
	totalXP = questsCompleted * WeeklyPerQuestXP
	bonusXP = WeeklyBaseBonus + questsCompleted*WeeklyPerQuestXP
	return totalXP, bonusXP
}

// CalculateWeeklyReward records a reward row for the current ISO week.
// Repeated calls in the same week create additional rows.
func (s *Service) CalculateWeeklyReward(ctx context.Context, userID int64, questsCompleted int) (*storage.WeeklyReward, error) {
	if questsCompleted < 0 {
		return nil, ValidationError{Field: "questsCompleted", Rule: "min", Param: "0", Value: questsCompleted}
	}
	if _, err := s.Player(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	year, week := WeekOf(now, s.loc)
	total, bonus := ComputeWeeklyReward(questsCompleted)
	w := storage.WeeklyReward{
		UserID:          userID,
		Week:            week,
		Year:            year,
		QuestsCompleted: questsCompleted,
		TotalXPEarned:   total,
		BonusXP:         bonus,
		CreatedAt:       now,
	}
	id, err := s.repos.WeeklyRewards.Insert(ctx, w)
	if err != nil {
		return nil, storageErr("calculate weekly reward", err)
	}
	w.ID = id

	s.logger.Debug("weekly reward recorded", "user_id", userID, "year", year, "week", week, "bonus_xp", bonus)
	return &w, nil
}

// ThisWeek returns the Monday-to-Sunday reward week containing now.
func (s *Service) ThisWeek() Period {
	return WeekPeriod(s.now(), s.loc)
}

// CompletionsThisWeek counts the completions of userID in the last seven days.
func (s *Service) CompletionsThisWeek(ctx context.Context, userID int64) (int, error) {
	now := s.now()
	n, err := s.repos.Progress.CountBetween(ctx, userID, now.Add(-7*24*time.Hour), now.Add(time.Millisecond))
	if err != nil {
		return 0, storageErr("count weekly completions", err)
	}
	return n, nil
}

// WeeklyRewardHistory returns past reward rows, newest week first.
func (s *Service) WeeklyRewardHistory(ctx context.Context, userID int64, limit int) ([]storage.WeeklyReward, error) {
	if limit <= 0 {
		limit = DefaultWeeklyHistorySize
	}
	list, err := s.repos.WeeklyRewards.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storageErr("weekly reward history", err)
	}
	return list, nil
}
