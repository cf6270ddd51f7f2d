package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/clnbrd/clnbrd/internal/tui/colors"
)

// maxModalLines caps the detail list; the rest is summarised.
const maxModalLines = 5

// ConfirmationModal is a bordered yes/no prompt with an optional list of
// details, such as the edits a quit would discard.
type ConfirmationModal struct {
	Title       string
	Message     string
	Lines       []string
	Keys        help.KeyMap
	Help        help.Model
	BorderColor lipgloss.TerminalColor
	Width       int
}

func NewConfirmationModal(title, message string, lines []string, keys help.KeyMap, helpModel help.Model, borderColor lipgloss.TerminalColor) ConfirmationModal {
	return ConfirmationModal{
		Title:       title,
		Message:     message,
		Lines:       lines,
		Keys:        keys,
		Help:        helpModel,
		BorderColor: borderColor,
		Width:       50,
	}
}

// details renders the bulleted list, truncated to maxModalLines.
func (m ConfirmationModal) details() string {
	if len(m.Lines) == 0 {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(colors.NeonPurple)
	shown := m.Lines
	if len(shown) > maxModalLines {
		shown = shown[:maxModalLines]
	}
	out := make([]string, 0, len(shown)+1)
	for _, l := range shown {
		out = append(out, style.Render("• "+l))
	}
	if extra := len(m.Lines) - len(shown); extra > 0 {
		out = append(out, lipgloss.NewStyle().Foreground(colors.LightGray).Render(fmt.Sprintf("+%d more", extra)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// View renders the modal body without the border or key help.
func (m ConfirmationModal) View() string {
	title := lipgloss.NewStyle().Foreground(m.BorderColor).Bold(true).Render(m.Title)
	content := lipgloss.JoinVertical(lipgloss.Center, title, "", m.Message)
	if d := m.details(); d != "" {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", d)
	}
	return content
}

// Centered boxes the modal and places it in the middle of a width x height
// screen. A zero size returns the bare box.
func (m ConfirmationModal) Centered(width, height int) string {
	helpText := lipgloss.NewStyle().
		Foreground(colors.LightGray).
		Width(m.Width - 10).
		Align(lipgloss.Center).
		Render(m.Help.View(m.Keys))

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(m.BorderColor).
		Padding(1, 4).
		Render(lipgloss.JoinVertical(lipgloss.Center, m.View(), "", helpText))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
