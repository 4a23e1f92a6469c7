package engine

import (
	"context"

	"habitquest/internal/storage"
)

// TemplateDef is a built-in daily quest. Built-ins are identified by Code and
// have no owner.
type TemplateDef struct {
	Code           string
	Name           string
	Description    string
	Category       Category
	Difficulty     Difficulty
	BaseXP         int
	TargetProgress int
	Unit           string
	Bonus          storage.Attributes
}

func builtinTemplates() []TemplateDef {
	return []TemplateDef{
		{
			Code:           "pushups",
			Name:           "Push-ups",
			Description:    "Do your daily set of push-ups.",
			Category:       CategoryExercise,
			Difficulty:     DifficultyEasy,
			BaseXP:         20,
			TargetProgress: 20,
			Unit:           "reps",
			Bonus:          storage.Attributes{Strength: 1},
		},
		{
			Code:           "run",
			Name:           "Morning run",
			Description:    "Run before the day gets busy.",
			Category:       CategoryExercise,
			Difficulty:     DifficultyMedium,
			BaseXP:         40,
			TargetProgress: 3,
			Unit:           "km",
			Bonus:          storage.Attributes{Agility: 1, Vitality: 1},
		},
		{
			Code:           "read",
			Name:           "Read",
			Description:    "Read a book, not a feed.",
			Category:       CategoryLearning,
			Difficulty:     DifficultyEasy,
			BaseXP:         25,
			TargetProgress: 20,
			Unit:           "pages",
			Bonus:          storage.Attributes{Intelligence: 1},
		},
		{
			Code:           "water",
			Name:           "Hydrate",
			Description:    "Drink enough water through the day.",
			Category:       CategoryHealth,
			Difficulty:     DifficultyEasy,
			BaseXP:         15,
			TargetProgress: 8,
			Unit:           "glasses",
			Bonus:          storage.Attributes{Vitality: 1},
		},
		{
			Code:           "meditate",
			Name:           "Meditate",
			Description:    "Sit quietly and breathe.",
			Category:       CategoryHealth,
			Difficulty:     DifficultyEasy,
			BaseXP:         20,
			TargetProgress: 10,
			Unit:           "minutes",
			Bonus:          storage.Attributes{Wisdom: 1},
		},
		{
			Code:           "deep_work",
			Name:           "Deep work",
			Description:    "One focused block without notifications.",
			Category:       CategoryProductivity,
			Difficulty:     DifficultyHard,
			BaseXP:         60,
			TargetProgress: 1,
			Unit:           "session",
			Bonus:          storage.Attributes{Intelligence: 1, Wisdom: 1, Luck: 1},
		},
	}
}

// SeedCatalog inserts missing built-in templates and returns how many were added.
func (s *Service) SeedCatalog(ctx context.Context) (int, error) {
	added := 0
	err := storage.WithTx(ctx, s.db, func(r *storage.Repos) error {
		n, err := seedBuiltins(ctx, r, s)
		added = n
		return err
	})
	if err != nil {
		return 0, storageErr("seed catalog", err)
	}
	if added > 0 {
		s.logger.Debug("catalog seeded", "added", added)
	}
	return added, nil
}

func seedBuiltins(ctx context.Context, r *storage.Repos, s *Service) (int, error) {
	now := s.now()
	added := 0
	for _, def := range builtinTemplates() {
		code := def.Code
		ok, err := r.Templates.InsertBuiltin(ctx, storage.TemplateInsert{
			Code:           &code,
			Name:           def.Name,
			Description:    def.Description,
			Category:       string(def.Category),
			Difficulty:     string(def.Difficulty),
			BaseXP:         def.BaseXP,
			TargetProgress: def.TargetProgress,
			Unit:           def.Unit,
			Bonus:          def.Bonus,
			Now:            now,
		})
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// Templates lists the templates a player's day is built from.
func (s *Service) Templates(ctx context.Context, userID int64) ([]storage.QuestTemplate, error) {
	list, err := s.repos.Templates.ListAvailable(ctx, userID)
	if err != nil {
		return nil, storageErr("list templates", err)
	}
	return list, nil
}

// CustomQuests lists the active templates authored by userID.
func (s *Service) CustomQuests(ctx context.Context, userID int64) ([]storage.QuestTemplate, error) {
	list, err := s.repos.Templates.ListOwned(ctx, userID)
	if err != nil {
		return nil, storageErr("list custom quests", err)
	}
	return list, nil
}
