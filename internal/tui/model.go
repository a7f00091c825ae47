// Package tui is the interactive terminal client. Every mutation goes
// through the reconciler; the UI only renders its views and status.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"todoapp/internal/model"
	"todoapp/internal/sync"
)

type ViewMode string

const (
	ViewActive    ViewMode = "Active"
	ViewCompleted ViewMode = "Completed"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type KeyMap struct {
	Add       string
	Toggle    string
	Restore   string
	Delete    string
	Completed string
	Refresh   string
	Help      string
	Quit      string
}

type Model struct {
	rec    *sync.Reconciler
	events chan sync.Event

	Mode      ViewMode
	Cursor    int
	Active    []model.Task
	Completed []model.Task

	Adding      bool
	HelpVisible bool
	Quitting    bool
	Status      StatusBar
	Keys        KeyMap

	quickAddInput textinput.Model
	saveSpinner   spinner.Model
	spinnerActive bool
}

func NewModel(rec *sync.Reconciler) Model {
	input := textinput.New()
	input.Placeholder = "task title"
	input.CharLimit = 200

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	events := make(chan sync.Event, 16)
	rec.Notify(func(e sync.Event) {
		select {
		case events <- e:
		default:
		}
	})

	return Model{
		rec:    rec,
		events: events,
		Mode:   ViewActive,
		Keys: KeyMap{
			Add:       "a",
			Toggle:    " ",
			Restore:   "r",
			Delete:    "x",
			Completed: "c",
			Refresh:   "R",
			Help:      "?",
			Quit:      "q",
		},
		quickAddInput: input,
		saveSpinner:   spin,
	}
}

// visible returns the task list for the current mode.
func (m Model) visible() []model.Task {
	if m.Mode == ViewCompleted {
		return m.Completed
	}
	return m.Active
}

func (m *Model) clampCursor() {
	if max := len(m.visible()) - 1; m.Cursor > max {
		m.Cursor = max
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}
