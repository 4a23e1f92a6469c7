package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"habitquest/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct reports the first violated bound as a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return ValidationError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param(), Value: fe.Value()}
	}
	return err
}

// ChatQuestProposal is a quest drafted in conversation. Lengths are counted
// in characters.
type ChatQuestProposal struct {
	Name           string     `json:"name" validate:"min=5,max=255"`
	Description    string     `json:"description" validate:"min=10,max=500"`
	Category       Category   `json:"category" validate:"oneof=exercise learning health productivity custom"`
	Difficulty     Difficulty `json:"difficulty" validate:"oneof=easy medium hard extreme"`
	BaseXP         int        `json:"baseXp" validate:"min=10,max=500"`
	TargetProgress int        `json:"targetProgress" validate:"min=1"`
	Unit           string     `json:"unit" validate:"max=50"`
}

// CustomQuestProposal is a quest authored by hand. The description is optional.
type CustomQuestProposal struct {
	Name           string     `json:"name" validate:"min=1,max=255"`
	Description    string     `json:"description"`
	Category       Category   `json:"category" validate:"oneof=exercise learning health productivity custom"`
	Difficulty     Difficulty `json:"difficulty" validate:"oneof=easy medium hard extreme"`
	BaseXP         int        `json:"baseXp" validate:"min=10,max=500"`
	TargetProgress int        `json:"targetProgress" validate:"min=1"`
	Unit           string     `json:"unit" validate:"max=50"`
}

// QuestVariation is one externally drafted alternative of a quest idea.
type QuestVariation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  int    `json:"difficulty"`
	XPReward    int    `json:"xpReward"`
	Category    string `json:"category"`
}

// Admission confirms that a proposal became a template and an active quest
// for the current day. Admission never awards xp.
type Admission struct {
	TemplateID int64
	QuestID    int64
	Message    string
}

const (
	IdeaMinLength = 10
	IdeaMaxLength = 500
)

// ValidateIdea checks a natural-language quest idea before it is sent out
// for drafting.
func ValidateIdea(idea string) error {
	n := utf8.RuneCountInString(idea)
	if n < IdeaMinLength {
		return ValidationError{Field: "idea", Rule: "min", Param: fmt.Sprint(IdeaMinLength), Value: idea}
	}
	if n > IdeaMaxLength {
		return ValidationError{Field: "idea", Rule: "max", Param: fmt.Sprint(IdeaMaxLength), Value: idea}
	}
	return nil
}

// MapVariationDifficulty maps the 1-5 draft scale onto the four difficulties.
// 4 and 5 both map to extreme.
func MapVariationDifficulty(level int) (Difficulty, error) {
	switch level {
	case 1:
		return DifficultyEasy, nil
	case 2:
		return DifficultyMedium, nil
	case 3:
		return DifficultyHard, nil
	case 4, 5:
		return DifficultyExtreme, nil
	default:
		return "", ValidationError{Field: "difficulty", Rule: "oneof", Param: "1 2 3 4 5", Value: level}
	}
}

// AdmitChatQuest validates a chat-drafted quest and makes it available today.
func (s *Service) AdmitChatQuest(ctx context.Context, userID int64, p ChatQuestProposal) (*Admission, error) {
	if err := validateStruct(p); err != nil {
		return nil, err
	}
	return s.admit(ctx, userID, storage.QuestTemplate{
		Name:           p.Name,
		Description:    p.Description,
		Category:       string(p.Category),
		Difficulty:     string(p.Difficulty),
		BaseXP:         p.BaseXP,
		TargetProgress: p.TargetProgress,
		Unit:           p.Unit,
	})
}

// AdmitCustomQuest validates a hand-authored quest and makes it available today.
func (s *Service) AdmitCustomQuest(ctx context.Context, userID int64, p CustomQuestProposal) (*Admission, error) {
	if err := validateStruct(p); err != nil {
		return nil, err
	}
	return s.admit(ctx, userID, storage.QuestTemplate{
		Name:           p.Name,
		Description:    p.Description,
		Category:       string(p.Category),
		Difficulty:     string(p.Difficulty),
		BaseXP:         p.BaseXP,
		TargetProgress: p.TargetProgress,
		Unit:           p.Unit,
	})
}

// AdmitVariation admits the variation the player picked through the chat path.
func (s *Service) AdmitVariation(ctx context.Context, userID int64, v QuestVariation) (*Admission, error) {
	d, err := MapVariationDifficulty(v.Difficulty)
	if err != nil {
		return nil, err
	}
	return s.AdmitChatQuest(ctx, userID, ChatQuestProposal{
		Name:           v.Title,
		Description:    v.Description,
		Category:       Category(strings.ToLower(strings.TrimSpace(v.Category))),
		Difficulty:     d,
		BaseXP:         v.XPReward,
		TargetProgress: 1,
	})
}

func (s *Service) admit(ctx context.Context, userID int64, t storage.QuestTemplate) (*Admission, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	day := s.Today()
	var adm Admission

	err := storage.WithTx(ctx, s.db, func(r *storage.Repos) error {
		if _, err := loadPlayer(ctx, r, userID); err != nil {
			return err
		}
		owner := userID
		tid, err := r.Templates.Insert(ctx, storage.TemplateInsert{
			OwnerID:        &owner,
			Name:           t.Name,
			Description:    t.Description,
			Category:       t.Category,
			Difficulty:     t.Difficulty,
			BaseXP:         t.BaseXP,
			TargetProgress: t.TargetProgress,
			Unit:           t.Unit,
			Now:            now,
		})
		if err != nil {
			return err
		}
		qid, _, err := r.Quests.Insert(ctx, instanceFromTemplate(userID, &tid, t, day, now))
		if err != nil {
			return err
		}
		adm = Admission{
			TemplateID: tid,
			QuestID:    qid,
			Message:    fmt.Sprintf("Quest %q accepted for %s.", t.Name, day.Start.Format(time.DateOnly)),
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("admit quest", err)
	}

	s.logger.Debug("quest admitted", "user_id", userID, "template_id", adm.TemplateID, "quest_id", adm.QuestID)
	s.publish(ctx, s.newEvent(userID, EventQuestAvailable, "New quest available", adm.Message))
	return &adm, nil
}
