package engine

import "strings"

// ParseCategory parses user input to a Category. Common aliases are accepted.
func ParseCategory(input string) (Category, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "fitness", "workout":
		return CategoryExercise, nil
	case "study", "read", "reading":
		return CategoryLearning, nil
	case "wellness":
		return CategoryHealth, nil
	case "work":
		return CategoryProductivity, nil
	case "":
		return CategoryCustom, nil
	}
	if c := Category(s); c.IsValid() {
		return c, nil
	}
	return "", ValidationError{Field: "category", Rule: "oneof", Value: input}
}

// ParseDifficulty parses user input to a Difficulty. Empty input means easy.
func ParseDifficulty(input string) (Difficulty, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "", "e":
		return DifficultyEasy, nil
	case "med", "m":
		return DifficultyMedium, nil
	case "h":
		return DifficultyHard, nil
	case "x":
		return DifficultyExtreme, nil
	}
	if d := Difficulty(s); d.IsValid() {
		return d, nil
	}
	return "", ValidationError{Field: "difficulty", Rule: "oneof", Value: input}
}
