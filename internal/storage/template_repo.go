package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type TemplateRepo struct {
	db DBTX
}

func NewTemplateRepo(db DBTX) *TemplateRepo {
	return &TemplateRepo{db: db}
}

type TemplateInsert struct {
	OwnerID        *int64
	Code           *string
	Name           string
	Description    string
	Category       string
	Difficulty     string
	BaseXP         int
	TargetProgress int
	Unit           string
	Bonus          Attributes
	Now            time.Time
}

const templateColumns = `id, owner_id, code, name, description, category, difficulty,
	base_xp, target_progress, unit,
	strength_bonus, vitality_bonus, agility_bonus, intelligence_bonus, wisdom_bonus, luck_bonus,
	active, created_at, updated_at`

func (r *TemplateRepo) Insert(ctx context.Context, in TemplateInsert) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quest_templates (
			owner_id, code, name, description, category, difficulty,
			base_xp, target_progress, unit,
			strength_bonus, vitality_bonus, agility_bonus, intelligence_bonus, wisdom_bonus, luck_bonus,
			active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`, in.OwnerID, in.Code, in.Name, in.Description, in.Category, in.Difficulty,
		in.BaseXP, in.TargetProgress, in.Unit,
		in.Bonus.Strength, in.Bonus.Vitality, in.Bonus.Agility, in.Bonus.Intelligence, in.Bonus.Wisdom, in.Bonus.Luck,
		toMillis(in.Now), toMillis(in.Now))
	if err != nil {
		return 0, fmt.Errorf("template insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("template last insert id: %w", err)
	}
	return id, nil
}

// InsertBuiltin inserts a built-in template keyed by code unless one with the
// same code already exists. It reports whether a row was written.
func (r *TemplateRepo) InsertBuiltin(ctx context.Context, in TemplateInsert) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quest_templates (
			owner_id, code, name, description, category, difficulty,
			base_xp, target_progress, unit,
			strength_bonus, vitality_bonus, agility_bonus, intelligence_bonus, wisdom_bonus, luck_bonus,
			active, created_at, updated_at
		) VALUES (NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(code) DO NOTHING
	`, in.Code, in.Name, in.Description, in.Category, in.Difficulty,
		in.BaseXP, in.TargetProgress, in.Unit,
		in.Bonus.Strength, in.Bonus.Vitality, in.Bonus.Agility, in.Bonus.Intelligence, in.Bonus.Wisdom, in.Bonus.Luck,
		toMillis(in.Now), toMillis(in.Now))
	if err != nil {
		return false, fmt.Errorf("template insert builtin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("template rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *TemplateRepo) Get(ctx context.Context, id int64) (*QuestTemplate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM quest_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("template get: %w", err)
	}
	return t, nil
}

// ListAvailable returns active templates visible to a player: the built-in
// catalog plus the player's own custom templates.
func (r *TemplateRepo) ListAvailable(ctx context.Context, userID int64) ([]QuestTemplate, error) {
	return r.list(ctx, `
		SELECT `+templateColumns+`
		FROM quest_templates
		WHERE active = 1 AND (owner_id IS NULL OR owner_id = ?)
		ORDER BY id ASC
	`, userID)
}

// ListOwned returns the active custom templates created by userID.
func (r *TemplateRepo) ListOwned(ctx context.Context, userID int64) ([]QuestTemplate, error) {
	return r.list(ctx, `
		SELECT `+templateColumns+`
		FROM quest_templates
		WHERE active = 1 AND owner_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
}

// Update rewrites the editable fields of a template.
func (r *TemplateRepo) Update(ctx context.Context, t *QuestTemplate) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE quest_templates
		SET name = ?, description = ?, category = ?, difficulty = ?,
			base_xp = ?, target_progress = ?, unit = ?,
			strength_bonus = ?, vitality_bonus = ?, agility_bonus = ?,
			intelligence_bonus = ?, wisdom_bonus = ?, luck_bonus = ?,
			active = ?, updated_at = ?
		WHERE id = ?
	`, t.Name, t.Description, t.Category, t.Difficulty,
		t.BaseXP, t.TargetProgress, t.Unit,
		t.Bonus.Strength, t.Bonus.Vitality, t.Bonus.Agility,
		t.Bonus.Intelligence, t.Bonus.Wisdom, t.Bonus.Luck,
		boolToInt(t.Active), toMillis(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("template update: %w", err)
	}
	return nil
}

func (r *TemplateRepo) list(ctx context.Context, query string, args ...any) ([]QuestTemplate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("template list: %w", err)
	}
	defer rows.Close()

	var out []QuestTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("template scan: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("template rows: %w", err)
	}
	return out, nil
}

func scanTemplate(row scanner) (*QuestTemplate, error) {
	var (
		t         QuestTemplate
		ownerID   sql.NullInt64
		code      sql.NullString
		active    int
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&t.ID, &ownerID, &code, &t.Name, &t.Description, &t.Category, &t.Difficulty,
		&t.BaseXP, &t.TargetProgress, &t.Unit,
		&t.Bonus.Strength, &t.Bonus.Vitality, &t.Bonus.Agility,
		&t.Bonus.Intelligence, &t.Bonus.Wisdom, &t.Bonus.Luck,
		&active, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	if ownerID.Valid {
		v := ownerID.Int64
		t.OwnerID = &v
	}
	if code.Valid {
		v := code.String
		t.Code = &v
	}
	t.Active = active != 0
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return &t, nil
}
