package engine

import (
	"context"
	"fmt"
	"time"

	"habitquest/internal/storage"
)

// StartDay instantiates the current day's quests for userID: one per built-in
// template and one per active custom template. Templates already instantiated
// today are skipped, so calling it again is harmless.
func (s *Service) StartDay(ctx context.Context, userID int64) ([]storage.Quest, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	day := s.Today()
	created := 0

	err := storage.WithTx(ctx, s.db, func(r *storage.Repos) error {
		if _, err := loadPlayer(ctx, r, userID); err != nil {
			return err
		}
		if _, err := seedBuiltins(ctx, r, s); err != nil {
			return err
		}
		templates, err := r.Templates.ListAvailable(ctx, userID)
		if err != nil {
			return err
		}
		for _, t := range templates {
			tid := t.ID
			_, ok, err := r.Quests.Insert(ctx, instanceFromTemplate(userID, &tid, t, day, now))
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("start day", err)
	}

	if created > 0 {
		s.logger.Debug("day started", "user_id", userID, "created", created)
		s.publish(ctx, s.newEvent(userID, EventQuestAvailable,
			"New daily quests",
			fmt.Sprintf("%d new quests are waiting for you today.", created)))
	}
	return s.TodayQuests(ctx, userID)
}

// TodayQuests returns every quest of userID scheduled for the current day.
func (s *Service) TodayQuests(ctx context.Context, userID int64) ([]storage.Quest, error) {
	list, err := s.repos.Quests.ListForPeriod(ctx, userID, s.Today().Start)
	if err != nil {
		return nil, storageErr("list today's quests", err)
	}
	return list, nil
}

// Quest returns a single quest owned by userID.
func (s *Service) Quest(ctx context.Context, userID, questID int64) (*storage.Quest, error) {
	q, err := loadQuest(ctx, s.repos, userID, questID)
	if err != nil {
		return nil, storageErr("get quest", err)
	}
	return q, nil
}

func instanceFromTemplate(userID int64, templateID *int64, t storage.QuestTemplate, day Period, now time.Time) storage.QuestInsert {
	return storage.QuestInsert{
		UserID:         userID,
		TemplateID:     templateID,
		Name:           t.Name,
		Description:    t.Description,
		Category:       t.Category,
		Difficulty:     t.Difficulty,
		TargetProgress: t.TargetProgress,
		Unit:           t.Unit,
		XPReward:       t.BaseXP,
		PeriodStart:    day.Start,
		DueAt:          day.End,
		Now:            now,
	}
}
