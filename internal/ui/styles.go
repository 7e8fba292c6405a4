// Package ui holds the terminal widgets and styles used by the CLI.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	quitTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// Field is one label and value line of a Summary.
type Field struct {
	Label string
	Value string
}

// Summary renders fields under title inside a rounded box.
func Summary(title string, fields []Field) string {
	lines := []string{titleStyle.Render(title), ""}
	for _, f := range fields {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(f.Label), valueStyle.Render(f.Value)))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Success renders msg as a positive status line.
func Success(msg string) string {
	return okStyle.Render("✅ " + msg)
}

// Warning renders msg as a cautionary status line.
func Warning(msg string) string {
	return warnStyle.Render("⚠️  " + msg)
}

// Failure renders msg as an error status line.
func Failure(msg string) string {
	return errStyle.Render("❌ " + msg)
}
