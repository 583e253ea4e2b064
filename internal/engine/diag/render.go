package diag

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	kindStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	noteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// Render formats a diagnostic for terminal output. Color is applied via
// lipgloss, which degrades to plain text when stdout is not a TTY.
func Render(d *Diagnostic) string {
	var b strings.Builder

	if d.Location.File != "" {
		b.WriteString(locationStyle.Render(fmt.Sprintf("%s:%d:%d:", d.Location.File, d.Location.Line, d.Location.Column)))
		b.WriteString(" ")
	} else if d.Module != "" {
		b.WriteString(locationStyle.Render(d.Module + ":"))
		b.WriteString(" ")
	}

	b.WriteString(kindStyle.Render(string(d.Kind)))
	b.WriteString(": ")
	b.WriteString(d.Message)

	if d.Path != "" && !strings.Contains(d.Message, d.Path) {
		b.WriteString(" (")
		b.WriteString(pathStyle.Render(d.Path))
		b.WriteString(")")
	}

	for _, note := range d.Notes {
		b.WriteString("\n  ")
		if note.Location.File != "" {
			b.WriteString(locationStyle.Render(fmt.Sprintf("%s:%d:%d:", note.Location.File, note.Location.Line, note.Location.Column)))
			b.WriteString(" ")
		}
		b.WriteString(noteStyle.Render("note:"))
		b.WriteString(" ")
		b.WriteString(note.Message)
	}

	if len(d.Candidates) > 0 {
		b.WriteString("\n  ")
		b.WriteString(noteStyle.Render("candidates:"))
		for _, c := range d.Candidates {
			b.WriteString("\n    ")
			b.WriteString(c.String())
		}
	}

	return b.String()
}

// RenderAll formats diagnostics in the bag's stable order, one block per
// diagnostic.
func RenderAll(bag *Bag) string {
	items := bag.Items()
	blocks := make([]string, 0, len(items))
	for _, d := range items {
		blocks = append(blocks, Render(d))
	}
	return strings.Join(blocks, "\n")
}
