package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/tui/colors"
	"github.com/clnbrd/clnbrd/internal/tui/components"
)

const nameWidth = 30

func (m RulesModel) View() string {
	if m.confirmQuit {
		modal := components.NewConfirmationModal(
			"Unsaved changes",
			"Quit without saving changes to "+m.profile+"?",
			m.pendingChanges(),
			m.keys.Confirm,
			m.help,
			ColorStateDirty,
		)
		return modal.Centered(m.width, m.height)
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	tabs := []components.Tab{
		{Label: "Stages", On: len(m.Snapshot().ActiveStages(rules.OnDemand)), Total: len(rules.AllStages())},
		{Label: "Custom rules", On: -1, Total: len(m.rules.CustomRules())},
	}
	b.WriteString(components.RenderTabBar(tabs, int(m.tab), " ", ActiveTabStyle, TabStyle))
	b.WriteString("\n\n")

	var body string
	if m.tab == CustomTab {
		body = m.customView()
	} else {
		body = m.stagesView()
	}
	b.WriteString(ActivePaneStyle.Render(body))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys.Rules))
	return b.String()
}

func (m RulesModel) header() string {
	title := ApplyGradient("clnbrd rules", colors.GradientStart, colors.GradientEnd)
	sub := SubtitleStyle.Render("profile: " + m.profile)
	if m.dirty {
		sub += "  " + StatusStyle.Render("● unsaved")
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", sub)
}

func (m RulesModel) stagesView() string {
	lines := make([]string, 0, len(m.stages)+2)
	for i, id := range m.stages {
		info, _ := rules.Info(id)
		on := m.isOn(id)
		cfg := m.config(id)

		check := "[ ]"
		if on {
			check = "[x]"
		}
		name := fmt.Sprintf("%-*s", nameWidth, info.Name)

		style := RowStyle
		switch {
		case i == m.cursor:
			style = SelectedRowStyle
		case !on:
			style = OffRowStyle
		}
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		lines = append(lines, cursor+style.Render(check+" "+name)+" "+ModeStyle(cfg.Mode).Render(cfg.Mode.String()))
	}

	info, _ := rules.Info(m.selected())
	detail := info.Description
	if m.selected() == rules.StageRemoveEmdashes {
		detail += fmt.Sprintf(" (currently %q)", m.rules.EmdashReplacement)
	}
	if m.selected() == rules.StageCustomRules && len(m.rules.CustomRules()) == 0 {
		detail += ". Add rules with 'clnbrd rules custom add'"
	}
	lines = append(lines, "", DescriptionStyle.Render(detail))
	return strings.Join(lines, "\n")
}

func (m RulesModel) customView() string {
	list := m.rules.CustomRules()
	if len(list) == 0 {
		return DescriptionStyle.Render("No custom rules. Add one with 'clnbrd rules custom add <find> <replace>'.")
	}
	lines := make([]string, 0, len(list))
	for i, r := range list {
		cursor := "  "
		style := RowStyle
		if i == m.customCursor {
			cursor = "> "
			style = SelectedRowStyle
		}
		lines = append(lines, cursor+style.Render(fmt.Sprintf("%2d. %q → %q", i+1, r.Find, r.Replace)))
	}
	return strings.Join(lines, "\n")
}
