package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme values match config.GeneralSettings.Theme.
const (
	ThemeAdaptive = 0
	ThemeLight    = 1
	ThemeDark     = 2
)

// ApplyTheme picks the light or dark side of the adaptive colors. The
// adaptive theme asks the terminal for its background.
func ApplyTheme(theme int) {
	switch theme {
	case ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	case ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	default:
		out := termenv.NewOutput(os.Stdout)
		lipgloss.SetHasDarkBackground(out.HasDarkBackground())
	}
}
