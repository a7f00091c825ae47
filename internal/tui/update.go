package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"todoapp/internal/model"
	"todoapp/internal/sync"
)

type TasksRefreshedMsg struct {
	Active    []model.Task
	Completed []model.Task
	Err       error
}

type OpFinishedMsg struct {
	Err error
}

type ReconcilerEventMsg struct {
	Event sync.Event
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.waitForEventCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Adding {
			return m.handleQuickAddKey(typed)
		}
		return m.handleKey(typed)

	case TasksRefreshedMsg:
		m.Active, m.Completed = typed.Active, typed.Completed
		m.clampCursor()
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil

	case OpFinishedMsg:
		m.spinnerActive = false
		m.Active, m.Completed = m.rec.Active(), m.rec.Completed()
		m.clampCursor()
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil

	case ReconcilerEventMsg:
		m.Status = statusForEvent(typed.Event)
		return m, m.waitForEventCmd()

	case spinner.TickMsg:
		if m.spinnerActive {
			var cmd tea.Cmd
			m.saveSpinner, cmd = m.saveSpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit

	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil

	case m.Keys.Add:
		m.Adding = true
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
		return m, nil

	case m.Keys.Completed:
		if m.Mode == ViewCompleted {
			m.Mode = ViewActive
		} else {
			m.Mode = ViewCompleted
		}
		m.Cursor = 0
		return m, nil

	case m.Keys.Refresh:
		m.Status = StatusBar{Text: "refreshing"}
		return m, m.refreshCmd()

	case "up", "k":
		m.Cursor--
		m.clampCursor()
		return m, nil

	case "down", "j":
		m.Cursor++
		m.clampCursor()
		return m, nil

	case m.Keys.Toggle:
		if m.Mode == ViewActive {
			if task, ok := m.selected(); ok {
				return m, m.mutateCmd(func(ctx context.Context) error {
					return m.rec.Complete(ctx, task)
				})
			}
		}
		return m, nil

	case m.Keys.Restore:
		if m.Mode == ViewCompleted {
			if task, ok := m.selected(); ok {
				return m, m.mutateCmd(func(ctx context.Context) error {
					return m.rec.Restore(ctx, task)
				})
			}
		}
		return m, nil

	case m.Keys.Delete:
		if m.Mode == ViewCompleted {
			if task, ok := m.selected(); ok {
				return m, m.mutateCmd(func(ctx context.Context) error {
					return m.rec.RemoveCompleted(ctx, task)
				})
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleQuickAddKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.Adding = false
		m.quickAddInput.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.quickAddInput.Value())
		m.Adding = false
		m.quickAddInput.Blur()
		if title == "" {
			return m, nil
		}
		m.spinnerActive = true
		m.Status = StatusBar{Text: "saving"}
		add := m.mutateCmd(func(ctx context.Context) error {
			_, err := m.rec.Add(ctx, title, sync.AddOptions{})
			return err
		})
		return m, tea.Batch(m.saveSpinner.Tick, add)
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(key)
	return m, cmd
}

func (m Model) selected() (model.Task, bool) {
	visible := m.visible()
	if m.Cursor < 0 || m.Cursor >= len(visible) {
		return model.Task{}, false
	}
	return visible[m.Cursor], true
}

func (m Model) refreshCmd() tea.Cmd {
	rec := m.rec
	return func() tea.Msg {
		err := rec.Fetch(context.Background())
		return TasksRefreshedMsg{Active: rec.Active(), Completed: rec.Completed(), Err: err}
	}
}

// mutateCmd runs one reconciler mutation off the update loop. The result is
// always inspected; a failure lands in the status bar.
func (m Model) mutateCmd(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return OpFinishedMsg{Err: op(context.Background())}
	}
}

func (m Model) waitForEventCmd() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ReconcilerEventMsg{Event: <-events}
	}
}

func statusForEvent(e sync.Event) StatusBar {
	switch e.Kind {
	case sync.EventTaskAdded:
		return StatusBar{Text: fmt.Sprintf("added %q", e.Task.Title)}
	case sync.EventTaskCompleted:
		return StatusBar{Text: fmt.Sprintf("completed %q", e.Task.Title)}
	case sync.EventTaskRestored:
		return StatusBar{Text: fmt.Sprintf("restored %q", e.Task.Title)}
	case sync.EventTaskDeleted:
		return StatusBar{Text: fmt.Sprintf("deleted %q", e.Task.Title)}
	case sync.EventSyncFailed:
		return StatusBar{Text: fmt.Sprintf("offline: %q will sync later", e.Task.Title), IsError: true}
	default:
		return StatusBar{Text: string(e.Kind)}
	}
}
