package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type PenaltyRepo struct {
	db DBTX
}

func NewPenaltyRepo(db DBTX) *PenaltyRepo {
	return &PenaltyRepo{db: db}
}

func (r *PenaltyRepo) Insert(ctx context.Context, p Penalty) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO penalties (
			user_id, quest_id, type, reason,
			xp_lost, hp_lost, streak_lost, attribute_affected, attribute_lost,
			applied_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.UserID, p.QuestID, p.Type, p.Reason,
		p.XPLost, p.HPLost, p.StreakLost, p.AttributeAffected, p.AttributeLost,
		toMillis(p.AppliedAt))
	if err != nil {
		return 0, fmt.Errorf("penalty insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("penalty last insert id: %w", err)
	}
	return id, nil
}

// ListByUser returns penalties of userID, newest first.
func (r *PenaltyRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]Penalty, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, quest_id, type, reason,
			xp_lost, hp_lost, streak_lost, attribute_affected, attribute_lost, applied_at
		FROM penalties
		WHERE user_id = ?
		ORDER BY applied_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("penalty list: %w", err)
	}
	defer rows.Close()

	var out []Penalty
	for rows.Next() {
		var (
			p         Penalty
			questID   sql.NullInt64
			attr      sql.NullString
			appliedAt int64
		)
		if err := rows.Scan(
			&p.ID, &p.UserID, &questID, &p.Type, &p.Reason,
			&p.XPLost, &p.HPLost, &p.StreakLost, &attr, &p.AttributeLost, &appliedAt,
		); err != nil {
			return nil, fmt.Errorf("penalty scan: %w", err)
		}
		if questID.Valid {
			v := questID.Int64
			p.QuestID = &v
		}
		if attr.Valid {
			v := attr.String
			p.AttributeAffected = &v
		}
		p.AppliedAt = fromMillis(appliedAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("penalty rows: %w", err)
	}
	return out, nil
}
