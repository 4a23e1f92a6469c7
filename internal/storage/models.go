package storage

import "time"

// Attributes holds the six RPG stats. It is used for player totals, template
// bonuses and per-completion gains.
type Attributes struct {
	Strength     int
	Vitality     int
	Agility      int
	Intelligence int
	Wisdom       int
	Luck         int
}

// Add returns the field-wise sum of a and b.
func (a Attributes) Add(b Attributes) Attributes {
	return Attributes{
		Strength:     a.Strength + b.Strength,
		Vitality:     a.Vitality + b.Vitality,
		Agility:      a.Agility + b.Agility,
		Intelligence: a.Intelligence + b.Intelligence,
		Wisdom:       a.Wisdom + b.Wisdom,
		Luck:         a.Luck + b.Luck,
	}
}

func (a Attributes) IsZero() bool {
	return a == Attributes{}
}

type Player struct {
	ID            int64
	Name          string
	Level         int
	XP            int
	XPToNextLevel int
	HP            int
	MaxHP         int
	MP            int
	MaxMP         int
	Attributes

	CurrentStreak        int
	LongestStreak        int
	LastQuestCompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type QuestTemplate struct {
	ID             int64
	OwnerID        *int64 // nil for built-in templates
	Code           *string
	Name           string
	Description    string
	Category       string
	Difficulty     string
	BaseXP         int
	TargetProgress int
	Unit           string
	Bonus          Attributes
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Quest struct {
	ID              int64
	UserID          int64
	TemplateID      *int64
	Name            string
	Description     string
	Category        string
	Difficulty      string
	CurrentProgress int
	TargetProgress  int
	Unit            string
	XPReward        int
	Status          string
	PeriodStart     time.Time
	CreatedAt       time.Time
	DueAt           time.Time
	CompletedAt     *time.Time
	FailedAt        *time.Time
}

// ProgressRecord is the append-only audit entry written for each completion.
type ProgressRecord struct {
	ID          int64
	UserID      int64
	QuestID     int64
	XPGained    int
	LevelUp     bool
	Gains       Attributes
	CompletedAt time.Time
}

type Penalty struct {
	ID                int64
	UserID            int64
	QuestID           *int64
	Type              string
	Reason            string
	XPLost            int
	HPLost            int
	StreakLost        int
	AttributeAffected *string
	AttributeLost     int
	AppliedAt         time.Time
}

type WeeklyReward struct {
	ID              int64
	UserID          int64
	Week            int
	Year            int
	QuestsCompleted int
	TotalXPEarned   int
	BonusXP         int
	CreatedAt       time.Time
}

type Notification struct {
	ID        int64
	UserID    int64
	EventID   string
	Type      string
	Title     string
	Content   string
	Reason    string
	Read      bool
	CreatedAt time.Time
	ReadAt    *time.Time
}
