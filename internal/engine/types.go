package engine

type Category string

const (
	CategoryExercise     Category = "exercise"
	CategoryLearning     Category = "learning"
	CategoryHealth       Category = "health"
	CategoryProductivity Category = "productivity"
	CategoryCustom       Category = "custom"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryExercise, CategoryLearning, CategoryHealth, CategoryProductivity, CategoryCustom:
		return true
	default:
		return false
	}
}

type Difficulty string

const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyExtreme Difficulty = "extreme"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme:
		return true
	default:
		return false
	}
}

// QuestStatus is the lifecycle state of a quest instance. Completed and
// Failed are terminal.
type QuestStatus string

const (
	StatusActive    QuestStatus = "active"
	StatusCompleted QuestStatus = "completed"
	StatusFailed    QuestStatus = "failed"
)

func (s QuestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type PenaltyType string

const (
	PenaltyStreakReset PenaltyType = "streak_reset"
)

// PenaltyReasonQuestFailed is recorded on every penalty caused by a failed quest.
const PenaltyReasonQuestFailed = "quest_failed"

type EventType string

const (
	EventQuestAvailable      EventType = "quest_available"
	EventQuestDeadline       EventType = "quest_deadline"
	EventLevelUp             EventType = "level_up"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventMotivational        EventType = "motivational"
	EventPenalty             EventType = "penalty"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventQuestAvailable, EventQuestDeadline, EventLevelUp,
		EventAchievementUnlocked, EventMotivational, EventPenalty:
		return true
	default:
		return false
	}
}
