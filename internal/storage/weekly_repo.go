package storage

import (
	"context"
	"fmt"
)

type WeeklyRewardRepo struct {
	db DBTX
}

func NewWeeklyRewardRepo(db DBTX) *WeeklyRewardRepo {
	return &WeeklyRewardRepo{db: db}
}

// Insert appends a reward record. Rows are never deduplicated per week.
func (r *WeeklyRewardRepo) Insert(ctx context.Context, w WeeklyReward) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO weekly_rewards (user_id, week, year, quests_completed, total_xp_earned, bonus_xp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.UserID, w.Week, w.Year, w.QuestsCompleted, w.TotalXPEarned, w.BonusXP, toMillis(w.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("weekly reward insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("weekly reward last insert id: %w", err)
	}
	return id, nil
}

// ListByUser returns reward records of userID ordered by year and week, newest first.
func (r *WeeklyRewardRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]WeeklyReward, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, week, year, quests_completed, total_xp_earned, bonus_xp, created_at
		FROM weekly_rewards
		WHERE user_id = ?
		ORDER BY year DESC, week DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("weekly reward list: %w", err)
	}
	defer rows.Close()

	var out []WeeklyReward
	for rows.Next() {
		var (
			w         WeeklyReward
			createdAt int64
		)
		if err := rows.Scan(&w.ID, &w.UserID, &w.Week, &w.Year, &w.QuestsCompleted, &w.TotalXPEarned, &w.BonusXP, &createdAt); err != nil {
			return nil, fmt.Errorf("weekly reward scan: %w", err)
		}
		w.CreatedAt = fromMillis(createdAt)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("weekly reward rows: %w", err)
	}
	return out, nil
}
