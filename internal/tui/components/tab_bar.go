package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one pane of the rules editor.
type Tab struct {
	Label string
	On    int // enabled items, or -1 when items cannot be switched off
	Total int // 0 hides the counter
}

func (t Tab) String() string {
	switch {
	case t.Total == 0:
		return t.Label
	case t.On < 0:
		return fmt.Sprintf("%s (%d)", t.Label, t.Total)
	}
	return fmt.Sprintf("%s %d/%d", t.Label, t.On, t.Total)
}

// RenderTabBar joins the tabs on one line, styling the active one and
// separating them with sep.
func RenderTabBar(tabs []Tab, active int, sep string, activeStyle, inactiveStyle lipgloss.Style) string {
	parts := make([]string, 0, len(tabs))
	for i, t := range tabs {
		style := inactiveStyle
		if i == active {
			style = activeStyle
		}
		parts = append(parts, style.Render(t.String()))
	}
	return strings.Join(parts, sep)
}
