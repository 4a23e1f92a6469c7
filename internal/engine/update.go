package engine

import (
	"context"

	"habitquest/internal/storage"
)

// CustomQuestPatch lists the fields of a custom template that may change. Nil
// fields are left as they are.
type CustomQuestPatch struct {
	Name           *string
	Description    *string
	Category       *Category
	Difficulty     *Difficulty
	BaseXP         *int
	TargetProgress *int
	Unit           *string
}

// UpdateCustomQuest edits a custom template owned by userID. The patched
// template is re-validated with the hand-authored bounds. Quests already
// instantiated from it keep their values; the change applies from the next day.
func (s *Service) UpdateCustomQuest(ctx context.Context, userID, templateID int64, patch CustomQuestPatch) (*storage.QuestTemplate, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var out *storage.QuestTemplate
	err := storage.WithTx(ctx, s.db, func(r *storage.Repos) error {
		t, err := loadCustomTemplate(ctx, r, userID, templateID)
		if err != nil {
			return err
		}

		prop := CustomQuestProposal{
			Name:           t.Name,
			Description:    t.Description,
			Category:       Category(t.Category),
			Difficulty:     Difficulty(t.Difficulty),
			BaseXP:         t.BaseXP,
			TargetProgress: t.TargetProgress,
			Unit:           t.Unit,
		}
		if patch.Name != nil {
			prop.Name = *patch.Name
		}
		if patch.Description != nil {
			prop.Description = *patch.Description
		}
		if patch.Category != nil {
			prop.Category = *patch.Category
		}
		if patch.Difficulty != nil {
			prop.Difficulty = *patch.Difficulty
		}
		if patch.BaseXP != nil {
			prop.BaseXP = *patch.BaseXP
		}
		if patch.TargetProgress != nil {
			prop.TargetProgress = *patch.TargetProgress
		}
		if patch.Unit != nil {
			prop.Unit = *patch.Unit
		}
		if err := validateStruct(prop); err != nil {
			return err
		}

		t.Name = prop.Name
		t.Description = prop.Description
		t.Category = string(prop.Category)
		t.Difficulty = string(prop.Difficulty)
		t.BaseXP = prop.BaseXP
		t.TargetProgress = prop.TargetProgress
		t.Unit = prop.Unit
		t.UpdatedAt = s.now()
		if err := r.Templates.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, storageErr("update custom quest", err)
	}
	return out, nil
}

// DeactivateCustomQuest hides a custom template from future days. The row is
// kept so past quests still reference it.
func (s *Service) DeactivateCustomQuest(ctx context.Context, userID, templateID int64) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	err := storage.WithTx(ctx, s.db, func(r *storage.Repos) error {
		t, err := loadCustomTemplate(ctx, r, userID, templateID)
		if err != nil {
			return err
		}
		t.Active = false
		t.UpdatedAt = s.now()
		return r.Templates.Update(ctx, t)
	})
	return storageErr("deactivate custom quest", err)
}

func loadCustomTemplate(ctx context.Context, r *storage.Repos, userID, templateID int64) (*storage.QuestTemplate, error) {
	t, err := r.Templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil || !t.Active || t.OwnerID == nil || *t.OwnerID != userID {
		return nil, NotFoundError{Kind: "custom quest", ID: templateID}
	}
	return t, nil
}
