// Package tui implements the interactive rules editor.
package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clnbrd/clnbrd/internal/rules"
)

// Tab selects the editor pane.
type Tab int

const (
	StagesTab Tab = iota
	CustomTab
)

// RulesModel edits a private copy of the rule configuration. Nothing is
// published until the caller applies the result of a saved session.
type RulesModel struct {
	orig    *rules.Snapshot
	rules   rules.RuleSet
	configs map[rules.StageID]rules.RuleConfig
	stages  []rules.StageID
	profile string

	tab          Tab
	cursor       int
	customCursor int

	dirty       bool
	saved       bool
	confirmQuit bool

	width  int
	height int
	help   help.Model
	keys   KeyMap
}

// NewRulesModel starts an editing session on snap.
func NewRulesModel(snap *rules.Snapshot, profile string) RulesModel {
	return RulesModel{
		orig:    snap,
		rules:   snap.Rules.WithCustomRules(snap.Rules.CustomRules()),
		configs: snap.Configs(),
		stages:  rules.AllStages(),
		profile: profile,
		help:    help.New(),
		keys:    Keys,
	}
}

func (m RulesModel) Init() tea.Cmd {
	return nil
}

// Saved reports whether the session ended with a save.
func (m RulesModel) Saved() bool { return m.saved }

// Dirty reports whether there are unsaved edits.
func (m RulesModel) Dirty() bool { return m.dirty }

// Apply copies the edited configuration into d.
func (m RulesModel) Apply(d *rules.Draft) {
	d.Rules = m.rules.WithCustomRules(m.rules.CustomRules())
	for id, cfg := range m.configs {
		d.Configs[id] = cfg
	}
}

// Snapshot returns the edited configuration as a snapshot.
func (m RulesModel) Snapshot() *rules.Snapshot {
	return rules.NewSnapshot(m.rules, m.configs)
}

func (m RulesModel) config(id rules.StageID) rules.RuleConfig {
	if cfg, ok := m.configs[id]; ok {
		return cfg
	}
	return rules.DefaultConfig(id)
}

// isOn reports whether the stage flag and its master toggle are both on.
func (m RulesModel) isOn(id rules.StageID) bool {
	cfg := m.config(id)
	if !rules.HasFlag(id) {
		return cfg.Enabled
	}
	return m.rules.Flag(id) && cfg.Enabled
}

func (m RulesModel) selected() rules.StageID {
	return m.stages[m.cursor]
}

// pendingChanges describes every edit made since the session started.
func (m RulesModel) pendingChanges() []string {
	var out []string
	for _, id := range m.stages {
		name := string(id)
		if info, ok := rules.Info(id); ok {
			name = info.Name
		}
		was := m.orig.Config(id)
		wasOn := was.Enabled && (!rules.HasFlag(id) || m.orig.Rules.Flag(id))
		switch {
		case wasOn != m.isOn(id):
			state := "off"
			if m.isOn(id) {
				state = "on"
			}
			out = append(out, fmt.Sprintf("%s %s", name, state))
		case was.Mode != m.config(id).Mode:
			out = append(out, fmt.Sprintf("%s: %s", name, m.config(id).Mode))
		}
	}
	if m.rules.EmdashReplacement != m.orig.Rules.EmdashReplacement {
		out = append(out, fmt.Sprintf("Em-dash replacement %q", m.rules.EmdashReplacement))
	}
	if !slices.Equal(m.rules.CustomRules(), m.orig.Rules.CustomRules()) {
		out = append(out, fmt.Sprintf("Custom rules (%d)", len(m.rules.CustomRules())))
	}
	return out
}
