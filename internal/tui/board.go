package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"habitquest/internal/engine"
)

// RunBoard opens the daily quest board for userID.
func RunBoard(ctx context.Context, svc *engine.Service, userID int64, out io.Writer) error {
	m := newBoardModel(ctx, svc, userID)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
