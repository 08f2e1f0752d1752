package prompt

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var severityStyles = map[Severity]lipgloss.Style{
	SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

var severityMarks = map[Severity]string{
	SeverityInfo:    "•",
	SeveritySuccess: "✓",
	SeverityWarning: "!",
	SeverityError:   "✗",
}

// Terminal writes styled notifications to a writer.
type Terminal struct {
	W io.Writer
}

// Notify prints the message prefixed with a severity mark.
func (t Terminal) Notify(message string, severity Severity) {
	style, ok := severityStyles[severity]
	if !ok {
		style = severityStyles[SeverityInfo]
	}
	mark, ok := severityMarks[severity]
	if !ok {
		mark = severityMarks[SeverityInfo]
	}
	fmt.Fprintln(t.W, style.Render(mark+" "+message))
}
