package storage

import (
	"context"
	"fmt"
	"time"
)

type ProgressRepo struct {
	db DBTX
}

func NewProgressRepo(db DBTX) *ProgressRepo {
	return &ProgressRepo{db: db}
}

func (r *ProgressRepo) Insert(ctx context.Context, rec ProgressRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO progress_records (
			user_id, quest_id, xp_gained, level_up,
			strength_gain, vitality_gain, agility_gain, intelligence_gain, wisdom_gain, luck_gain,
			completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.UserID, rec.QuestID, rec.XPGained, boolToInt(rec.LevelUp),
		rec.Gains.Strength, rec.Gains.Vitality, rec.Gains.Agility,
		rec.Gains.Intelligence, rec.Gains.Wisdom, rec.Gains.Luck,
		toMillis(rec.CompletedAt))
	if err != nil {
		return 0, fmt.Errorf("progress insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("progress last insert id: %w", err)
	}
	return id, nil
}

// CountBetween returns how many completions userID recorded in [from, to).
func (r *ProgressRepo) CountBetween(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM progress_records
		WHERE user_id = ? AND completed_at >= ? AND completed_at < ?
	`, userID, toMillis(from), toMillis(to)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("progress count: %w", err)
	}
	return n, nil
}

// ListByUser returns the most recent completions of userID, newest first.
func (r *ProgressRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]ProgressRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, quest_id, xp_gained, level_up,
			strength_gain, vitality_gain, agility_gain, intelligence_gain, wisdom_gain, luck_gain,
			completed_at
		FROM progress_records
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("progress list: %w", err)
	}
	defer rows.Close()

	var out []ProgressRecord
	for rows.Next() {
		var (
			rec         ProgressRecord
			levelUp     int
			completedAt int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.QuestID, &rec.XPGained, &levelUp,
			&rec.Gains.Strength, &rec.Gains.Vitality, &rec.Gains.Agility,
			&rec.Gains.Intelligence, &rec.Gains.Wisdom, &rec.Gains.Luck,
			&completedAt,
		); err != nil {
			return nil, fmt.Errorf("progress scan: %w", err)
		}
		rec.LevelUp = levelUp != 0
		rec.CompletedAt = fromMillis(completedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("progress rows: %w", err)
	}
	return out, nil
}
