// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todoapp/internal/model"
)

// SectionSeparator is the separator line for list sections.
const SectionSeparator = "------------"

// FormatTask writes one task line.
// Format: "{N:>4}  {TITLE}\n" (4-wide right-aligned number, two spaces, title)
func FormatTask(w io.Writer, num int, task model.Task) {
	line := normalizeTitle(task.Title)
	if task.SyncStatus.Pending() {
		line += " *"
	}
	fmt.Fprintf(w, "%4d  %s\n", num, line)
}

// FormatSectionHeader writes a section header for the list command.
func FormatSectionHeader(w io.Writer, title string) {
	fmt.Fprintln(w, SectionSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, SectionSeparator)
}

// normalizeTitle normalizes a task title for display.
// Empty or whitespace-only titles become "(untitled)"; newlines become spaces.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
