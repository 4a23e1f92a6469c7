package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type QuestRepo struct {
	db DBTX
}

func NewQuestRepo(db DBTX) *QuestRepo {
	return &QuestRepo{db: db}
}

type QuestInsert struct {
	UserID         int64
	TemplateID     *int64
	Name           string
	Description    string
	Category       string
	Difficulty     string
	TargetProgress int
	Unit           string
	XPReward       int
	PeriodStart    time.Time
	DueAt          time.Time
	Now            time.Time
}

const questColumns = `id, user_id, template_id, name, description, category, difficulty,
	current_progress, target_progress, unit, xp_reward, status,
	period_start, created_at, due_at, completed_at, failed_at`

// Insert creates an active quest. When a quest for the same template and
// period already exists the insert is skipped and created is false.
func (r *QuestRepo) Insert(ctx context.Context, in QuestInsert) (id int64, created bool, err error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quests (
			user_id, template_id, name, description, category, difficulty,
			current_progress, target_progress, unit, xp_reward, status,
			period_start, created_at, due_at
		) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, 'active', ?, ?, ?)
		ON CONFLICT(user_id, template_id, period_start) DO NOTHING
	`, in.UserID, in.TemplateID, in.Name, in.Description, in.Category, in.Difficulty,
		in.TargetProgress, in.Unit, in.XPReward,
		toMillis(in.PeriodStart), toMillis(in.Now), toMillis(in.DueAt))
	if err != nil {
		return 0, false, fmt.Errorf("quest insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("quest rows affected: %w", err)
	}
	if n == 0 {
		return 0, false, nil
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("quest last insert id: %w", err)
	}
	return id, true, nil
}

func (r *QuestRepo) Get(ctx context.Context, id int64) (*Quest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questColumns+` FROM quests WHERE id = ?`, id)
	q, err := scanQuest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("quest get: %w", err)
	}
	return q, nil
}

// ListForPeriod returns every quest of userID whose period starts at periodStart.
func (r *QuestRepo) ListForPeriod(ctx context.Context, userID int64, periodStart time.Time) ([]Quest, error) {
	return r.list(ctx, `
		SELECT `+questColumns+`
		FROM quests
		WHERE user_id = ? AND period_start = ?
		ORDER BY id ASC
	`, userID, toMillis(periodStart))
}

// ListOverdue returns active quests of userID whose deadline is at or before now.
func (r *QuestRepo) ListOverdue(ctx context.Context, userID int64, now time.Time) ([]Quest, error) {
	return r.list(ctx, `
		SELECT `+questColumns+`
		FROM quests
		WHERE user_id = ? AND status = 'active' AND due_at <= ?
		ORDER BY due_at ASC, id ASC
	`, userID, toMillis(now))
}

// SetProgress updates current_progress of an active quest. It reports false
// when the quest is no longer active.
func (r *QuestRepo) SetProgress(ctx context.Context, id int64, progress int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quests SET current_progress = ? WHERE id = ? AND status = 'active'
	`, progress, id)
	if err != nil {
		return false, fmt.Errorf("quest set progress: %w", err)
	}
	return affectedOne(res)
}

// MarkCompleted moves an active quest to completed. It reports false when the
// quest was not active, so a concurrent completion cannot succeed twice.
func (r *QuestRepo) MarkCompleted(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quests SET status = 'completed', completed_at = ? WHERE id = ? AND status = 'active'
	`, toMillis(at), id)
	if err != nil {
		return false, fmt.Errorf("quest complete: %w", err)
	}
	return affectedOne(res)
}

// MarkFailed moves an active quest to failed.
func (r *QuestRepo) MarkFailed(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quests SET status = 'failed', failed_at = ? WHERE id = ? AND status = 'active'
	`, toMillis(at), id)
	if err != nil {
		return false, fmt.Errorf("quest fail: %w", err)
	}
	return affectedOne(res)
}

// CountCompleted returns the number of quests userID completed so far.
func (r *QuestRepo) CountCompleted(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM quests WHERE user_id = ? AND status = 'completed'
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("quest count completed: %w", err)
	}
	return n, nil
}

func (r *QuestRepo) list(ctx context.Context, query string, args ...any) ([]Quest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	defer rows.Close()

	var out []Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("quest scan: %w", err)
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest rows: %w", err)
	}
	return out, nil
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func scanQuest(row scanner) (*Quest, error) {
	var (
		q           Quest
		templateID  sql.NullInt64
		periodStart int64
		createdAt   int64
		dueAt       int64
		completedAt sql.NullInt64
		failedAt    sql.NullInt64
	)
	if err := row.Scan(
		&q.ID, &q.UserID, &templateID, &q.Name, &q.Description, &q.Category, &q.Difficulty,
		&q.CurrentProgress, &q.TargetProgress, &q.Unit, &q.XPReward, &q.Status,
		&periodStart, &createdAt, &dueAt, &completedAt, &failedAt,
	); err != nil {
		return nil, err
	}
	if templateID.Valid {
		v := templateID.Int64
		q.TemplateID = &v
	}
	q.PeriodStart = fromMillis(periodStart)
	q.CreatedAt = fromMillis(createdAt)
	q.DueAt = fromMillis(dueAt)
	q.CompletedAt = timePtr(completedAt)
	q.FailedAt = timePtr(failedAt)
	return &q, nil
}
