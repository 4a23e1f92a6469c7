package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"habitquest/internal/engine"
	"habitquest/internal/storage"
	"habitquest/internal/ui"
)

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	userID int64

	width  int
	height int

	player *storage.Player
	quests []storage.Quest

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	player *storage.Player
	quests []storage.Quest
	err    error
}

type completedMsg struct {
	res *engine.CompleteResult
	err error
}

type failedMsg struct {
	res *engine.FailResult
	err error
}

type progressMsg struct {
	quest *storage.Quest
	err   error
}

func newBoardModel(ctx context.Context, svc *engine.Service, userID int64) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		userID:  userID,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

// loadCmd opens the day, so the board always shows today's quests.
func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		quests, err := m.svc.StartDay(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		p, err := m.svc.Player(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{player: p, quests: quests}
	}
}

func (m boardModel) completeCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteQuest(m.ctx, m.userID, id)
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) failCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.FailQuest(m.ctx, m.userID, id)
		return failedMsg{res: res, err: err}
	}
}

func (m boardModel) progressCmd(id int64, progress int) tea.Cmd {
	return func() tea.Msg {
		q, err := m.svc.RecordProgress(m.ctx, m.userID, id, progress)
		return progressMsg{quest: q, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.player = msg.player
		m.quests = msg.quests
		m.selected = max(0, min(m.selected, len(m.quests)-1))
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = completeLog(msg.res)
		return m, m.loadCmd()
	case failedMsg:
		if msg.err != nil {
			m.lastLog = "Fail failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Quest %d failed: -%d HP, streak lost %d", msg.res.QuestID, msg.res.HPLost, msg.res.StreakLost)
		return m, m.loadCmd()
	case progressMsg:
		if msg.err != nil {
			m.lastLog = "Progress failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("%s: %d/%d", msg.quest.Name, msg.quest.CurrentProgress, msg.quest.TargetProgress)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.quests)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ":
			q := m.activeSelection()
			if q == nil {
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %s…", q.Name)
			return m, m.completeCmd(q.ID)
		case "x":
			q := m.activeSelection()
			if q == nil {
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Failing %s…", q.Name)
			return m, m.failCmd(q.ID)
		case "+", "=":
			q := m.activeSelection()
			if q == nil {
				return m, nil
			}
			return m, m.progressCmd(q.ID, q.CurrentProgress+1)
		case "-":
			q := m.activeSelection()
			if q == nil || q.CurrentProgress == 0 {
				return m, nil
			}
			return m, m.progressCmd(q.ID, q.CurrentProgress-1)
		}
	}
	return m, nil
}

// activeSelection returns the selected quest when it can still change state.
// It leaves a hint in the log otherwise.
func (m *boardModel) activeSelection() *storage.Quest {
	if m.selected < 0 || m.selected >= len(m.quests) {
		return nil
	}
	q := &m.quests[m.selected]
	if engine.QuestStatus(q.Status).IsTerminal() {
		m.lastLog = fmt.Sprintf("%s is already %s.", q.Name, q.Status)
		return nil
	}
	return q
}

func completeLog(res *engine.CompleteResult) string {
	s := fmt.Sprintf("Quest %d done: +%d XP, streak %d", res.QuestID, res.XPGained, res.Streak)
	if res.LeveledUp {
		s += fmt.Sprintf(" | %s → level %d", ui.BadgeLevelUp, res.NewLevel)
	}
	for _, a := range res.NewlyEarned {
		s += fmt.Sprintf(" | %s %s", a.Icon, a.Name)
	}
	return s
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := "\n" + m.lastLog

	leftW := 28
	if m.width > 0 {
		leftW = max(18, min(leftW, m.width/2))
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.player == nil {
		return "HabitQuest | loading…"
	}
	p := m.player
	return fmt.Sprintf("HabitQuest | %s | Level %d | XP %d/%d %s | %s %d",
		displayName(p), p.Level, p.XP, p.XPToNextLevel, ui.Bar(p.XP, p.XPToNextLevel, 24), ui.IconFire, p.CurrentStreak)
}

func (m boardModel) renderSidebar() string {
	if m.player == nil {
		return "Stats\n\nLoading…"
	}
	p := m.player
	lines := []string{
		"Vitals",
		fmt.Sprintf("- HP %3d/%-3d %s", p.HP, p.MaxHP, ui.Bar(p.HP, p.MaxHP, 10)),
		fmt.Sprintf("- MP %3d/%-3d %s", p.MP, p.MaxMP, ui.Bar(p.MP, p.MaxMP, 10)),
		fmt.Sprintf("- Streak %d (best %d)", p.CurrentStreak, p.LongestStreak),
		"",
		"Attributes",
		fmt.Sprintf("- STR %d  VIT %d", p.Strength, p.Vitality),
		fmt.Sprintf("- AGI %d  INT %d", p.Agility, p.Intelligence),
		fmt.Sprintf("- WIS %d  LCK %d", p.Wisdom, p.Luck),
		"",
		"Keys",
		"- ↑/↓ or j/k: move",
		"- c/space: complete",
		"- x: fail",
		"- +/-: progress",
		"- r: refresh",
		"- q: quit",
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	out := []string{"Today's quests"}
	if len(m.quests) == 0 {
		out = append(out, "(no quests today)")
		return strings.Join(out, "\n")
	}
	for i, q := range m.quests {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		out = append(out, fmt.Sprintf("%s%s %s %s %d/%d %s (+%d XP, %s)",
			cursor,
			statusMark(q.Status),
			q.Name,
			ui.Bar(q.CurrentProgress, q.TargetProgress, 10),
			q.CurrentProgress, q.TargetProgress, q.Unit,
			q.XPReward, q.Difficulty,
		))
	}
	return strings.Join(out, "\n")
}

func statusMark(status string) string {
	switch status {
	case string(engine.StatusCompleted):
		return "[x]"
	case string(engine.StatusFailed):
		return "[!]"
	default:
		return "[ ]"
	}
}

func displayName(p *storage.Player) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("player %d", p.ID)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
