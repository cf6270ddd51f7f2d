package tui

import (
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clnbrd/clnbrd/internal/rules"
)

var ansiEscapeRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func press(t *testing.T, m RulesModel, keys ...string) (RulesModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, c := m.Update(msg)
		m = next.(RulesModel)
		cmd = c
	}
	return m, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func newModel() RulesModel {
	return NewRulesModel(rules.DefaultSnapshot(), "Default")
}

func TestRulesModel_ToggleStage(t *testing.T) {
	m := newModel()
	// remove_emojis is first and off by default
	m, _ = press(t, m, "space")
	assert.True(t, m.isOn(rules.StageRemoveEmojis))
	assert.True(t, m.rules.Flag(rules.StageRemoveEmojis))
	assert.True(t, m.Dirty())

	m, _ = press(t, m, "down", "down", "space")
	assert.False(t, m.isOn(rules.StageRemoveZeroWidth))
	assert.False(t, m.config(rules.StageRemoveZeroWidth).Enabled)

	snap := m.Snapshot()
	assert.Contains(t, snap.ActiveStages(rules.OnDemand), rules.StageRemoveEmojis)
	assert.NotContains(t, snap.ActiveStages(rules.OnDemand), rules.StageRemoveZeroWidth)
}

func TestRulesModel_CycleMode(t *testing.T) {
	m := newModel()
	m, _ = press(t, m, "down", "down", "m")
	assert.Equal(t, rules.AutoClean, m.config(rules.StageRemoveZeroWidth).Mode)
	assert.True(t, m.Snapshot().AnyAutoClean())

	m, _ = press(t, m, "m", "m")
	assert.Equal(t, rules.OnDemandOnly, m.config(rules.StageRemoveZeroWidth).Mode)
}

func TestRulesModel_CursorClamps(t *testing.T) {
	m := newModel()
	m, _ = press(t, m, "up", "up")
	assert.Equal(t, 0, m.cursor)
	for range rules.AllStages() {
		m, _ = press(t, m, "j")
	}
	assert.Equal(t, len(rules.AllStages())-1, m.cursor)
}

func TestRulesModel_SaveAndApply(t *testing.T) {
	m := newModel()
	m, cmd := press(t, m, "space", "s")
	require.True(t, isQuit(cmd))
	assert.True(t, m.Saved())

	store := rules.NewStore(nil)
	_, err := store.Update(func(d *rules.Draft) error {
		m.Apply(d)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, store.Snapshot().Applies(rules.StageRemoveEmojis, rules.OnDemand))
}

func TestRulesModel_QuitConfirmsDiscard(t *testing.T) {
	m := newModel()
	m, cmd := press(t, m, "q")
	assert.True(t, isQuit(cmd), "clean session quits immediately")

	m = newModel()
	m, cmd = press(t, m, "space", "q")
	assert.False(t, isQuit(cmd))
	assert.True(t, m.confirmQuit)
	assert.Contains(t, m.View(), "Unsaved changes")
	assert.Equal(t, []string{"Remove Emojis on"}, m.pendingChanges())

	m, cmd = press(t, m, "n")
	assert.False(t, isQuit(cmd))
	assert.False(t, m.confirmQuit)

	m, _ = press(t, m, "q")
	m, cmd = press(t, m, "y")
	assert.True(t, isQuit(cmd))
	assert.False(t, m.Saved())
}

func TestRulesModel_CustomTab(t *testing.T) {
	rs := rules.DefaultRuleSet().WithCustomRules([]rules.CustomRule{
		{Find: "foo", Replace: "bar"},
		{Find: "baz", Replace: ""},
	})
	m := NewRulesModel(rules.NewSnapshot(rs, rules.DefaultConfigs()), "Work")

	m, _ = press(t, m, "tab")
	assert.Equal(t, CustomTab, m.tab)
	view := ansiEscapeRE.ReplaceAllString(m.View(), "")
	assert.Contains(t, view, `"foo" → "bar"`)
	assert.Contains(t, view, "Custom rules (2)")

	m, _ = press(t, m, "down", "x")
	assert.Equal(t, []rules.CustomRule{{Find: "foo", Replace: "bar"}}, m.rules.CustomRules())
	assert.Equal(t, 0, m.customCursor)

	// space does nothing on the custom tab
	before := m.config(rules.StageRemoveEmojis)
	m, _ = press(t, m, "space")
	assert.Equal(t, before, m.config(rules.StageRemoveEmojis))
}

func TestRulesModel_Reset(t *testing.T) {
	rs := rules.DefaultRuleSet().WithFlag(rules.StageNormalizeSpaces, false).
		WithCustomRule(rules.CustomRule{Find: "a", Replace: "b"})
	cfgs := rules.DefaultConfigs()
	cfgs[rules.StageHTMLTags] = rules.RuleConfig{Mode: rules.Disabled, Enabled: true}
	m := NewRulesModel(rules.NewSnapshot(rs, cfgs), "Default")

	m, _ = press(t, m, "r")
	assert.True(t, m.rules.Flag(rules.StageNormalizeSpaces))
	assert.Equal(t, rules.OnDemandOnly, m.config(rules.StageHTMLTags).Mode)
	assert.Len(t, m.rules.CustomRules(), 1, "custom rules survive a reset")
}

func TestRulesModel_View(t *testing.T) {
	m := newModel()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(RulesModel)

	view := ansiEscapeRE.ReplaceAllString(m.View(), "")
	assert.Contains(t, view, "profile: Default")
	assert.Contains(t, view, "Stages 12/14")
	assert.Contains(t, view, "> [ ] Remove Emojis")
	assert.Contains(t, view, "[x] Normalize Spaces")
	assert.Contains(t, view, "OnDemandOnly")
	assert.Contains(t, view, "Strips all emoji characters")
	assert.False(t, strings.Contains(view, "unsaved"))
}

func TestApplyGradient(t *testing.T) {
	assert.Equal(t, "", ApplyGradient("", "#000000", "#ffffff"))
	assert.Equal(t, "abc", ApplyGradient("abc", "nope", "#ffffff"))

	out := ApplyGradient("ab", "#000000", "#ffffff")
	assert.Equal(t, "ab", ansiEscapeRE.ReplaceAllString(out, ""))
}

func TestHexToRGB(t *testing.T) {
	c, err := hexToRGB("#fff")
	require.NoError(t, err)
	assert.Equal(t, rgb{255, 255, 255}, c)
	assert.Equal(t, "#ffffff", c.hex())

	_, err = hexToRGB("#12345")
	assert.Error(t, err)
}
