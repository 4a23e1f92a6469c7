package draft

import (
	"context"
	"fmt"
	"strings"

	"habitquest/internal/engine"
	"habitquest/internal/storage"
)

// DefaultVariations is how many drafts are requested when callers pass n <= 0.
const DefaultVariations = 4

// Generator drafts quest text outside the engine. Its output is untrusted and
// must go through admission before it becomes a quest.
type Generator interface {
	Variations(ctx context.Context, idea string, n int) ([]engine.QuestVariation, error)
	Motivation(ctx context.Context, p storage.Player) (string, error)
	Close() error
}

// Config wires Gemini access. An empty APIKey selects the template generator.
type Config struct {
	APIKey string
	Model  string
}

// New returns a Gemini-backed generator when an API key is configured and the
// deterministic template generator otherwise.
func New(ctx context.Context, cfg Config) (Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return NewTemplateGenerator(), nil
	}
	g, err := NewGeminiGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// TemplateGenerator builds variations from the idea text alone.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator { return &TemplateGenerator{} }

var templateSteps = []struct {
	prefix     string
	suffix     string
	difficulty int
	xp         int
}{
	{"Start small:", "for ten minutes today.", 1, 25},
	{"Build it up:", "with a clear target and no distractions.", 2, 60},
	{"Push harder:", "and double your usual effort.", 3, 120},
	{"Go all in:", "as a full challenge from start to finish.", 5, 250},
	{"Make it social:", "together with a friend and keep each other honest.", 2, 70},
}

func (g *TemplateGenerator) Variations(ctx context.Context, idea string, n int) ([]engine.QuestVariation, error) {
	if err := engine.ValidateIdea(idea); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultVariations
	}
	n = min(n, len(templateSteps))

	idea = strings.TrimSpace(idea)
	title := shorten(idea, 60)
	category := guessCategory(idea)

	out := make([]engine.QuestVariation, 0, n)
	for _, step := range templateSteps[:n] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, engine.QuestVariation{
			Title:       fmt.Sprintf("%s %s", step.prefix, title),
			Description: fmt.Sprintf("%s %s", idea, step.suffix),
			Difficulty:  step.difficulty,
			XPReward:    step.xp,
			Category:    string(category),
		})
	}
	return out, nil
}

func (g *TemplateGenerator) Motivation(_ context.Context, p storage.Player) (string, error) {
	switch {
	case p.CurrentStreak >= 7:
		return fmt.Sprintf("A %d-day streak. Protect it today.", p.CurrentStreak), nil
	case p.CurrentStreak > 0:
		return fmt.Sprintf("Day %d of your streak. One quest keeps it alive.", p.CurrentStreak), nil
	case p.HP < p.MaxHP/2:
		return "Your HP is low. Pick an easy quest and win it back.", nil
	default:
		return fmt.Sprintf("Level %d and %d XP to go. Start with one quest.", p.Level, max(0, p.XPToNextLevel-p.XP)), nil
	}
}

func (g *TemplateGenerator) Close() error { return nil }

func guessCategory(idea string) engine.Category {
	lower := strings.ToLower(idea)
	keywords := []struct {
		category engine.Category
		words    []string
	}{
		{engine.CategoryExercise, []string{"run", "walk", "gym", "push", "squat", "swim", "bike", "yoga", "workout"}},
		{engine.CategoryLearning, []string{"read", "learn", "study", "course", "language", "book", "practice"}},
		{engine.CategoryHealth, []string{"sleep", "water", "meditat", "eat", "diet", "stretch", "breath"}},
		{engine.CategoryProductivity, []string{"work", "focus", "inbox", "plan", "write", "clean", "organize"}},
	}
	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(lower, w) {
				return k.category
			}
		}
	}
	return engine.CategoryCustom
}

func shorten(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit-3])) + "..."
}
