package engine

import (
	"context"
	"fmt"

	"habitquest/internal/storage"
)

// CompleteResult is what callers surface to the player after a completion.
type CompleteResult struct {
	QuestID     int64
	XPGained    int
	LeveledUp   bool
	NewLevel    int
	Streak      int
	Gains       storage.Attributes
	NewlyEarned []Achievement
}

// FailResult reports the penalty applied for a failed quest.
type FailResult struct {
	QuestID    int64
	PenaltyID  int64
	HPLost     int
	StreakLost int
}

// RecordProgress replaces the current progress of an active quest. Reaching
// the target does not complete the quest.
func (s *Service) RecordProgress(ctx context.Context, userID, questID int64, progress int) (*storage.Quest, error) {
	if progress < 0 {
		return nil, ValidationError{Field: "currentProgress", Rule: "min", Param: "0", Value: progress}
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var out *storage.Quest
	err := storage.WithTx(ctx, s.db, func(r *storage.Repos) error {
		q, err := loadQuest(ctx, r, userID, questID)
		if err != nil {
			return err
		}
		if status := QuestStatus(q.Status); status != StatusActive {
			return StateError{QuestID: questID, Status: status, Op: "record progress on"}
		}
		ok, err := r.Quests.SetProgress(ctx, questID, progress)
		if err != nil {
			return err
		}
		if !ok {
			return staleState(ctx, r, questID, "record progress on")
		}
		q.CurrentProgress = progress
		out = q
		return nil
	})
	if err != nil {
		return nil, storageErr("record progress", err)
	}
	return out, nil
}

// CompleteQuest applies the reward bundle of an active quest and marks it
// completed, all in one transaction. A second call on the same quest fails
// with a StateError and changes nothing.
func (s *Service) CompleteQuest(ctx context.Context, userID, questID int64) (*CompleteResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	today := s.Today()
	var (
		res    CompleteResult
		events []Event
	)

	err := storage.WithTx(ctx, s.db, func(r *storage.Repos) error {
		q, err := loadQuest(ctx, r, userID, questID)
		if err != nil {
			return err
		}
		if status := QuestStatus(q.Status); status != StatusActive {
			return StateError{QuestID: questID, Status: status, Op: "complete"}
		}
		p, err := loadPlayer(ctx, r, userID)
		if err != nil {
			return err
		}

		var bonus storage.Attributes
		if q.TemplateID != nil {
			t, err := r.Templates.Get(ctx, *q.TemplateID)
			if err != nil {
				return err
			}
			if t != nil {
				bonus = t.Bonus
			}
		}

		completedBefore, err := r.Quests.CountCompleted(ctx, userID)
		if err != nil {
			return err
		}
		before := NewAchievementChecker(copyPlayer(p), completedBefore).GetAchievements()

		out := ApplyCompletion(p, q.XPReward, bonus, now, today)
		p.UpdatedAt = now

		ok, err := r.Quests.MarkCompleted(ctx, questID, now)
		if err != nil {
			return err
		}
		if !ok {
			return staleState(ctx, r, questID, "complete")
		}
		if err := r.Players.Update(ctx, p); err != nil {
			return err
		}
		if _, err := r.Progress.Insert(ctx, storage.ProgressRecord{
			UserID:      userID,
			QuestID:     questID,
			XPGained:    out.XPGained,
			LevelUp:     out.LeveledUp,
			Gains:       out.Gains,
			CompletedAt: now,
		}); err != nil {
			return err
		}

		after := NewAchievementChecker(p, completedBefore+1).GetAchievements()
		res = CompleteResult{
			QuestID:     questID,
			XPGained:    out.XPGained,
			LeveledUp:   out.LeveledUp,
			NewLevel:    out.NewLevel,
			Streak:      out.StreakAfter,
			Gains:       out.Gains,
			NewlyEarned: newlyEarned(before, after),
		}

		if out.LeveledUp {
			events = append(events, s.newEvent(userID, EventLevelUp,
				"Level up!",
				fmt.Sprintf("You reached level %d. Next level at %d XP.", out.NewLevel, p.XPToNextLevel)))
		}
		for _, a := range res.NewlyEarned {
			events = append(events, s.newEvent(userID, EventAchievementUnlocked,
				"Achievement unlocked: "+a.Name, a.Description))
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("complete quest", err)
	}

	s.logger.Debug("quest completed",
		"user_id", userID,
		"quest_id", questID,
		"xp", res.XPGained,
		"level_up", res.LeveledUp,
		"streak", res.Streak,
	)
	s.publish(ctx, events...)
	return &res, nil
}

// FailQuest applies the failure penalty of an active quest and marks it
// failed. Level and xp are never reduced.
func (s *Service) FailQuest(ctx context.Context, userID, questID int64) (*FailResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	res, ev, err := s.failLocked(ctx, userID, questID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ev)
	return res, nil
}

// FailOverdue fails every active quest of userID whose deadline has passed and
// returns their ids. It is meant to be driven by an external scheduler.
func (s *Service) FailOverdue(ctx context.Context, userID int64) ([]int64, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	overdue, err := s.repos.Quests.ListOverdue(ctx, userID, s.now())
	if err != nil {
		return nil, storageErr("list overdue quests", err)
	}

	var (
		failed []int64
		events []Event
	)
	for _, q := range overdue {
		_, ev, err := s.failLocked(ctx, userID, q.ID)
		if err != nil {
			s.publish(ctx, events...)
			return failed, err
		}
		failed = append(failed, q.ID)
		events = append(events,
			s.newEvent(userID, EventQuestDeadline, "Quest expired", fmt.Sprintf("%q was not finished in time.", q.Name)),
			ev)
	}
	s.publish(ctx, events...)
	return failed, nil
}

func (s *Service) failLocked(ctx context.Context, userID, questID int64) (*FailResult, Event, error) {
	now := s.now()
	var res FailResult

	err := storage.WithTx(ctx, s.db, func(r *storage.Repos) error {
		q, err := loadQuest(ctx, r, userID, questID)
		if err != nil {
			return err
		}
		if status := QuestStatus(q.Status); status != StatusActive {
			return StateError{QuestID: questID, Status: status, Op: "fail"}
		}
		p, err := loadPlayer(ctx, r, userID)
		if err != nil {
			return err
		}

		out := ApplyFailure(p, s.penaltyPercent)
		p.UpdatedAt = now

		ok, err := r.Quests.MarkFailed(ctx, questID, now)
		if err != nil {
			return err
		}
		if !ok {
			return staleState(ctx, r, questID, "fail")
		}
		if err := r.Players.Update(ctx, p); err != nil {
			return err
		}
		qid := questID
		penaltyID, err := r.Penalties.Insert(ctx, storage.Penalty{
			UserID:     userID,
			QuestID:    &qid,
			Type:       string(PenaltyStreakReset),
			Reason:     PenaltyReasonQuestFailed,
			HPLost:     out.HPLost,
			StreakLost: out.StreakLost,
			AppliedAt:  now,
		})
		if err != nil {
			return err
		}
		res = FailResult{
			QuestID:    questID,
			PenaltyID:  penaltyID,
			HPLost:     out.HPLost,
			StreakLost: out.StreakLost,
		}
		return nil
	})
	if err != nil {
		return nil, Event{}, storageErr("fail quest", err)
	}

	s.logger.Debug("quest failed",
		"user_id", userID,
		"quest_id", questID,
		"hp_lost", res.HPLost,
		"streak_lost", res.StreakLost,
	)
	ev := s.newEvent(userID, EventPenalty, "Quest failed",
		fmt.Sprintf("You lost %d HP and your %d-day streak.", res.HPLost, res.StreakLost))
	ev.Reason = PenaltyReasonQuestFailed
	return &res, ev, nil
}

// staleState reports the status a quest moved to between the read and the
// conditional update.
func staleState(ctx context.Context, r *storage.Repos, questID int64, op string) error {
	q, err := r.Quests.Get(ctx, questID)
	if err != nil {
		return err
	}
	status := StatusCompleted
	if q != nil {
		status = QuestStatus(q.Status)
	}
	return StateError{QuestID: questID, Status: status, Op: op}
}

func copyPlayer(p *storage.Player) *storage.Player {
	c := *p
	return &c
}

// Penalties lists the most recent penalties of userID.
func (s *Service) Penalties(ctx context.Context, userID int64, limit int) ([]storage.Penalty, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	list, err := s.repos.Penalties.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storageErr("list penalties", err)
	}
	return list, nil
}
