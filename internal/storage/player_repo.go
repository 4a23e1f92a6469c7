package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type PlayerRepo struct {
	db DBTX
}

func NewPlayerRepo(db DBTX) *PlayerRepo {
	return &PlayerRepo{db: db}
}

const playerColumns = `id, name, level, xp, xp_to_next_level, hp, max_hp, mp, max_mp,
	strength, vitality, agility, intelligence, wisdom, luck,
	current_streak, longest_streak, last_quest_completed_at, created_at, updated_at`

func (r *PlayerRepo) Get(ctx context.Context, id int64) (*Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("player get: %w", err)
	}
	return p, nil
}

// Create inserts a player with the schema defaults. Inserting an existing id
// is a no-op.
func (r *PlayerRepo) Create(ctx context.Context, id int64, name string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name, toMillis(now), toMillis(now))
	if err != nil {
		return fmt.Errorf("player insert: %w", err)
	}
	return nil
}

// Update writes every mutable player field in one statement.
func (r *PlayerRepo) Update(ctx context.Context, p *Player) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players
		SET name = ?, level = ?, xp = ?, xp_to_next_level = ?,
			hp = ?, max_hp = ?, mp = ?, max_mp = ?,
			strength = ?, vitality = ?, agility = ?, intelligence = ?, wisdom = ?, luck = ?,
			current_streak = ?, longest_streak = ?, last_quest_completed_at = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Level, p.XP, p.XPToNextLevel,
		p.HP, p.MaxHP, p.MP, p.MaxMP,
		p.Strength, p.Vitality, p.Agility, p.Intelligence, p.Wisdom, p.Luck,
		p.CurrentStreak, p.LongestStreak, nullMillis(p.LastQuestCompletedAt), toMillis(p.UpdatedAt),
		p.ID)
	if err != nil {
		return fmt.Errorf("player update: %w", err)
	}
	return nil
}

// Leaderboard returns players ordered by level then xp, highest first.
func (r *PlayerRepo) Leaderboard(ctx context.Context, limit int) ([]Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+playerColumns+`
		FROM players
		ORDER BY level DESC, xp DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("player leaderboard: %w", err)
	}
	defer rows.Close()

	var out []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("player scan: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("player leaderboard rows: %w", err)
	}
	return out, nil
}

func scanPlayer(row scanner) (*Player, error) {
	var (
		p         Player
		lastDone  sql.NullInt64
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Level, &p.XP, &p.XPToNextLevel, &p.HP, &p.MaxHP, &p.MP, &p.MaxMP,
		&p.Strength, &p.Vitality, &p.Agility, &p.Intelligence, &p.Wisdom, &p.Luck,
		&p.CurrentStreak, &p.LongestStreak, &lastDone, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	p.LastQuestCompletedAt = timePtr(lastDone)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}
