package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the rules editor
type KeyMap struct {
	Rules   RulesKeyMap
	Confirm ConfirmKeyMap
}

// RulesKeyMap defines keybindings for the rule list
type RulesKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	Toggle  key.Binding
	Cycle   key.Binding
	Delete  key.Binding
	Reset   key.Binding
	Save    key.Binding
	Quit    key.Binding
	Help    key.Binding
}

// ConfirmKeyMap defines keybindings for the discard-changes prompt
type ConfirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

// Keys contains all the keybindings for the editor
var Keys = KeyMap{
	Rules: RulesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "cycle mode"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete rule"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "defaults"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	},
	Confirm: ConfirmKeyMap{
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "discard"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "keep editing"),
		),
	},
}

// ShortHelp returns keybindings to show in the mini help view
func (k RulesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Cycle, k.NextTab, k.Save, k.Quit, k.Help}
}

// FullHelp returns keybindings for the expanded help view
func (k RulesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab},
		{k.Toggle, k.Cycle, k.Delete, k.Reset},
		{k.Save, k.Quit, k.Help},
	}
}

// ShortHelp returns keybindings to show
func (k ConfirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

// FullHelp returns keybindings for the expanded help view
func (k ConfirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
