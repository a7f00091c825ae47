package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"todoapp/internal/sync"
)

// Run starts the interactive UI and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, rec *sync.Reconciler) error {
	program := tea.NewProgram(NewModel(rec), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
