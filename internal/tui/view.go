package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"todoapp/internal/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const helpMarkdown = `# todo

| Key | Action |
| --- | ------ |
| a | add a task |
| space | complete the selected task |
| r | restore the selected completed task |
| x | delete the selected completed task |
| c | toggle the completed folder |
| R | refresh from the service |
| ? | toggle this help |
| q | quit |

Changes made offline are marked with * and sync on the next refresh.
`

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	if m.HelpVisible {
		return renderMarkdown(helpMarkdown)
	}

	header := headerStyle.Render(fmt.Sprintf("todo: %s (%d)", m.Mode, len(m.visible())))

	var body strings.Builder
	visible := m.visible()
	if len(visible) == 0 {
		body.WriteString("nothing here")
	}
	for i, task := range visible {
		line := taskLine(task)
		if i == m.Cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		body.WriteString(line)
		if i < len(visible)-1 {
			body.WriteString("\n")
		}
	}

	lines := []string{header, panelStyle.Width(60).Render(body.String())}

	if m.Adding {
		prompt := "new task: " + m.quickAddInput.View()
		if m.spinnerActive {
			prompt = m.saveSpinner.View() + " " + prompt
		}
		lines = append(lines, prompt)
	} else if m.spinnerActive {
		lines = append(lines, m.saveSpinner.View()+" saving")
	}

	if m.Status.Text != "" {
		status := statusStyle.Render(m.Status.Text)
		if m.Status.IsError {
			status = errorStyle.Render(m.Status.Text)
		}
		lines = append(lines, status)
	}

	lines = append(lines, footerStyle.Render("a add | space done | c completed | R refresh | ? help | q quit"))
	return strings.Join(lines, "\n")
}

func taskLine(task model.Task) string {
	mark := "[ ]"
	if task.Done {
		mark = "[x]"
	}
	line := mark + " " + task.Title
	if task.SyncStatus.Pending() {
		line = pendingStyle.Render(line + " *")
	}
	return line
}

func renderMarkdown(md string) string {
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
