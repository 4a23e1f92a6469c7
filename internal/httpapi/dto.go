package httpapi

import (
	"time"

	"habitquest/internal/engine"
	"habitquest/internal/storage"
)

type attributesResponse struct {
	Strength     int `json:"strength"`
	Vitality     int `json:"vitality"`
	Agility      int `json:"agility"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Luck         int `json:"luck"`
}

func toAttributes(a storage.Attributes) attributesResponse {
	return attributesResponse{
		Strength:     a.Strength,
		Vitality:     a.Vitality,
		Agility:      a.Agility,
		Intelligence: a.Intelligence,
		Wisdom:       a.Wisdom,
		Luck:         a.Luck,
	}
}

type playerResponse struct {
	ID                   int64              `json:"id"`
	Name                 string             `json:"name"`
	Level                int                `json:"level"`
	XP                   int                `json:"xp"`
	XPToNextLevel        int                `json:"xpToNextLevel"`
	HP                   int                `json:"hp"`
	MaxHP                int                `json:"maxHp"`
	MP                   int                `json:"mp"`
	MaxMP                int                `json:"maxMp"`
	Attributes           attributesResponse `json:"attributes"`
	CurrentStreak        int                `json:"currentStreak"`
	LongestStreak        int                `json:"longestStreak"`
	LastQuestCompletedAt *time.Time         `json:"lastQuestCompletedAt,omitempty"`
}

func toPlayer(p storage.Player) playerResponse {
	return playerResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Level:                p.Level,
		XP:                   p.XP,
		XPToNextLevel:        p.XPToNextLevel,
		HP:                   p.HP,
		MaxHP:                p.MaxHP,
		MP:                   p.MP,
		MaxMP:                p.MaxMP,
		Attributes:           toAttributes(p.Attributes),
		CurrentStreak:        p.CurrentStreak,
		LongestStreak:        p.LongestStreak,
		LastQuestCompletedAt: p.LastQuestCompletedAt,
	}
}

type questResponse struct {
	ID              int64      `json:"id"`
	TemplateID      *int64     `json:"templateId,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category"`
	Difficulty      string     `json:"difficulty"`
	CurrentProgress int        `json:"currentProgress"`
	TargetProgress  int        `json:"targetProgress"`
	Unit            string     `json:"unit,omitempty"`
	XPReward        int        `json:"xpReward"`
	Status          string     `json:"status"`
	DueAt           time.Time  `json:"dueAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	FailedAt        *time.Time `json:"failedAt,omitempty"`
}

func toQuest(q storage.Quest) questResponse {
	return questResponse{
		ID:              q.ID,
		TemplateID:      q.TemplateID,
		Name:            q.Name,
		Description:     q.Description,
		Category:        q.Category,
		Difficulty:      q.Difficulty,
		CurrentProgress: q.CurrentProgress,
		TargetProgress:  q.TargetProgress,
		Unit:            q.Unit,
		XPReward:        q.XPReward,
		Status:          q.Status,
		DueAt:           q.DueAt,
		CompletedAt:     q.CompletedAt,
		FailedAt:        q.FailedAt,
	}
}

func toQuests(list []storage.Quest) []questResponse {
	out := make([]questResponse, 0, len(list))
	for _, q := range list {
		out = append(out, toQuest(q))
	}
	return out
}

type templateResponse struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	Category       string             `json:"category"`
	Difficulty     string             `json:"difficulty"`
	BaseXP         int                `json:"baseXp"`
	TargetProgress int                `json:"targetProgress"`
	Unit           string             `json:"unit,omitempty"`
	Bonus          attributesResponse `json:"bonus"`
	Custom         bool               `json:"custom"`
}

func toTemplate(t storage.QuestTemplate) templateResponse {
	return templateResponse{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		Category:       t.Category,
		Difficulty:     t.Difficulty,
		BaseXP:         t.BaseXP,
		TargetProgress: t.TargetProgress,
		Unit:           t.Unit,
		Bonus:          toAttributes(t.Bonus),
		Custom:         t.OwnerID != nil,
	}
}

type completeResponse struct {
	XPGained     int                   `json:"xpGained"`
	LeveledUp    bool                  `json:"leveledUp"`
	NewLevel     int                   `json:"newLevel"`
	Streak       int                   `json:"streak"`
	Gains        attributesResponse    `json:"gains"`
	Achievements []achievementResponse `json:"achievements,omitempty"`
}

type failResponse struct {
	PenaltyID  int64  `json:"penaltyId"`
	Reason     string `json:"reason"`
	HPLost     int    `json:"hpLost"`
	StreakLost int    `json:"streakLost"`
}

type admissionResponse struct {
	TemplateID int64  `json:"templateId"`
	QuestID    int64  `json:"questId"`
	Message    string `json:"message"`
}

type weeklyRewardResponse struct {
	ID              int64     `json:"id"`
	Week            int       `json:"week"`
	Year            int       `json:"year"`
	QuestsCompleted int       `json:"questsCompleted"`
	TotalXPEarned   int       `json:"totalXpEarned"`
	BonusXP         int       `json:"bonusXp"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toWeeklyReward(w storage.WeeklyReward) weeklyRewardResponse {
	return weeklyRewardResponse{
		ID:              w.ID,
		Week:            w.Week,
		Year:            w.Year,
		QuestsCompleted: w.QuestsCompleted,
		TotalXPEarned:   w.TotalXPEarned,
		BonusXP:         w.BonusXP,
		CreatedAt:       w.CreatedAt,
	}
}

type notificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Reason    string    `json:"reason,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type achievementResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      bool   `json:"earned"`
}

func toAchievements(list []engine.Achievement) []achievementResponse {
	out := make([]achievementResponse, 0, len(list))
	for _, a := range list {
		out = append(out, achievementResponse{ID: a.ID, Name: a.Name, Description: a.Description, Icon: a.Icon, Earned: a.Earned})
	}
	return out
}

type customQuestPatchRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Category       *string `json:"category"`
	Difficulty     *string `json:"difficulty"`
	BaseXP         *int    `json:"baseXp"`
	TargetProgress *int    `json:"targetProgress"`
	Unit           *string `json:"unit"`
}

func (p customQuestPatchRequest) toPatch() engine.CustomQuestPatch {
	patch := engine.CustomQuestPatch{
		Name:           p.Name,
		Description:    p.Description,
		BaseXP:         p.BaseXP,
		TargetProgress: p.TargetProgress,
		Unit:           p.Unit,
	}
	if p.Category != nil {
		c := engine.Category(*p.Category)
		patch.Category = &c
	}
	if p.Difficulty != nil {
		d := engine.Difficulty(*p.Difficulty)
		patch.Difficulty = &d
	}
	return patch
}
