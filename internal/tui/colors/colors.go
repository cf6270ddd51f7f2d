package colors

import "github.com/charmbracelet/lipgloss"

// === Color Palette ===
// Neon on dark, high contrast on light.
var (
	NeonPurple = lipgloss.AdaptiveColor{Light: "#5d40c9", Dark: "#bd93f9"}
	NeonPink   = lipgloss.AdaptiveColor{Light: "#d10074", Dark: "#ff79c6"}
	NeonCyan   = lipgloss.AdaptiveColor{Light: "#0073a8", Dark: "#8be9fd"}
	Gray       = lipgloss.AdaptiveColor{Light: "#d0d0d0", Dark: "#44475a"} // Borders
	LightGray  = lipgloss.AdaptiveColor{
		Light: "#4a4a4a",
		Dark:  "#a9b1d6",
	} // Secondary text
	White = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#f8f8f2"}
)

// === Rule Mode Colors ===
var (
	ModeAutoClean = lipgloss.AdaptiveColor{
		Light: "#2e7d32",
		Dark:  "#50fa7b",
	} // Green - runs on every copy
	ModeOnDemand = lipgloss.AdaptiveColor{
		Light: "#0073a8",
		Dark:  "#8be9fd",
	} // Cyan - hotkey only
	ModeDisabled = lipgloss.AdaptiveColor{
		Light: "#9e9e9e",
		Dark:  "#6272a4",
	}
)

// === Status Colors ===
var (
	StateError = lipgloss.AdaptiveColor{Light: "#d32f2f", Dark: "#ff5555"}
	StateDirty = lipgloss.AdaptiveColor{Light: "#f57c00", Dark: "#ffb86c"} // Unsaved changes
)

// === Title Gradient ===
var (
	GradientStart = lipgloss.Color("#ff79c6")
	GradientEnd   = lipgloss.Color("#8be9fd")
)
