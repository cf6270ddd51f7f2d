package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clnbrd/clnbrd/internal/rules"
)

// Update handles messages and updates the model
func (m RulesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.confirmQuit {
			return m.updateConfirm(msg)
		}
		return m.updateRules(msg)
	}
	return m, nil
}

func (m RulesModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm.Yes):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Confirm.No):
		m.confirmQuit = false
	}
	return m, nil
}

func (m RulesModel) updateRules(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys.Rules
	switch {
	case key.Matches(msg, k.Quit):
		if m.dirty && msg.String() != "ctrl+c" {
			m.confirmQuit = true
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, k.Save):
		m.saved = true
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, k.NextTab):
		m.tab = (m.tab + 1) % 2

	case key.Matches(msg, k.Up):
		m.move(-1)

	case key.Matches(msg, k.Down):
		m.move(1)

	case key.Matches(msg, k.Reset):
		m.rules = rules.DefaultRuleSet().
			WithEmdashReplacement(m.rules.EmdashReplacement).
			WithCustomRules(m.rules.CustomRules())
		m.configs = rules.DefaultConfigs()
		m.dirty = true

	case m.tab == StagesTab && key.Matches(msg, k.Toggle):
		m.toggle(m.selected())

	case m.tab == StagesTab && key.Matches(msg, k.Cycle):
		id := m.selected()
		cfg := m.config(id)
		cfg.Mode = cfg.Mode.Next()
		m.configs[id] = cfg
		m.dirty = true

	case m.tab == CustomTab && key.Matches(msg, k.Delete):
		list := m.rules.CustomRules()
		if len(list) == 0 {
			break
		}
		m.rules = m.rules.WithoutCustomRule(m.customCursor)
		if m.customCursor >= len(list)-1 && m.customCursor > 0 {
			m.customCursor--
		}
		m.dirty = true
	}
	return m, nil
}

func (m *RulesModel) move(delta int) {
	if m.tab == CustomTab {
		n := len(m.rules.CustomRules())
		m.customCursor = clamp(m.customCursor+delta, 0, n-1)
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.stages)-1)
}

// toggle switches a stage on or off. Turning a stage on also sets its flag so
// it takes effect; the custom rules stage only has the master toggle.
func (m *RulesModel) toggle(id rules.StageID) {
	on := !m.isOn(id)
	cfg := m.config(id)
	cfg.Enabled = on
	m.configs[id] = cfg
	if rules.HasFlag(id) {
		m.rules = m.rules.WithFlag(id, on)
	}
	m.dirty = true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
