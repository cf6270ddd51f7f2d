package tui

import (
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/tui/colors"

	"github.com/charmbracelet/lipgloss"
)

// Re-export colors from colors package
var (
	ColorNeonPurple = colors.NeonPurple
	ColorNeonPink   = colors.NeonPink
	ColorNeonCyan   = colors.NeonCyan
	ColorGray       = colors.Gray
	ColorLightGray  = colors.LightGray
	ColorWhite      = colors.White
	ColorStateError = colors.StateError
	ColorStateDirty = colors.StateDirty
)

var (
	// Standard pane border
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	// Focus style for the active pane
	ActivePaneStyle = PaneStyle.
			BorderForeground(ColorNeonPink)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorNeonCyan).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorLightGray)

	TabStyle = lipgloss.NewStyle().
			Foreground(ColorLightGray).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(ColorNeonPink).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(ColorNeonPink).
			Padding(0, 1).
			Bold(true)

	RowStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorNeonPink).
				Bold(true)

	OffRowStyle = lipgloss.NewStyle().
			Foreground(colors.ModeDisabled)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(ColorLightGray).
				Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorStateDirty)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorStateError)
)

// ModeStyle colors a mode label.
func ModeStyle(m rules.Mode) lipgloss.Style {
	switch m {
	case rules.AutoClean:
		return lipgloss.NewStyle().Foreground(colors.ModeAutoClean).Bold(true)
	case rules.OnDemandOnly:
		return lipgloss.NewStyle().Foreground(colors.ModeOnDemand)
	default:
		return lipgloss.NewStyle().Foreground(colors.ModeDisabled)
	}
}
