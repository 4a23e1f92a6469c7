package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HabitQuest theme (CLI + TUI).

const (
	IconQuest    = "🗺️"
	IconSparkle  = "✨"
	IconPlus     = "➕"
	IconDone     = "✅"
	IconFailed   = "💀"
	IconTrophy   = "🏆"
	IconBolt     = "⚡"
	IconHeart    = "❤️"
	IconMana     = "🔮"
	IconFire     = "🔥"
	IconInfo     = "ℹ️"
	IconWarn     = "⚠️"
	IconError    = "🧨"
	IconScroll   = "📜"
	IconBell     = "🔔"
	IconCalendar = "📅"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// StatusText colors a quest status.
func StatusText(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		return Good.Render("completed")
	case "active":
		return H2.Render("active")
	case "failed":
		return Bad.Render("failed")
	default:
		return Muted.Render(status)
	}
}

func StatusIcon(status string) string {
	switch status {
	case "completed":
		return IconDone
	case "failed":
		return IconFailed
	default:
		return IconQuest
	}
}

// DifficultyText colors a difficulty from calm to loud.
func DifficultyText(d string) string {
	switch d {
	case "easy":
		return Good.Render(d)
	case "medium":
		return H2.Render(d)
	case "hard":
		return Warn.Render(d)
	case "extreme":
		return Bad.Render(d)
	default:
		return Muted.Render(d)
	}
}

// Bar renders value/total as a fixed-width ASCII bar.
func Bar(value, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	value = max(0, min(value, total))
	filled := min(value*width/total, width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
