package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clnbrd/clnbrd/internal/rules"
)

// allOn enables every stage on demand, emoji removal included.
func allOn(custom ...rules.CustomRule) *rules.Snapshot {
	rs := rules.DefaultRuleSet().WithFlag(rules.StageRemoveEmojis, true).WithCustomRules(custom)
	cfgs := rules.DefaultConfigs()
	for id := range cfgs {
		cfgs[id] = rules.RuleConfig{Mode: rules.OnDemandOnly, Enabled: true}
	}
	return rules.NewSnapshot(rs, cfgs)
}

// only enables the listed stages and nothing else.
func only(rs rules.RuleSet, ids ...rules.StageID) *rules.Snapshot {
	for _, id := range rules.AllStages() {
		rs = rs.WithFlag(id, false)
	}
	for _, id := range ids {
		rs = rs.WithFlag(id, true)
	}
	cfgs := rules.DefaultConfigs()
	for id := range cfgs {
		cfgs[id] = rules.RuleConfig{Mode: rules.OnDemandOnly, Enabled: true}
	}
	return rules.NewSnapshot(rs, cfgs)
}

func TestRun_Defaults(t *testing.T) {
	snap := rules.DefaultSnapshot()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"watermark", "Hello\u200B world", "Hello world"},
		{"dashes and quotes", "It’s “great”—really", `It's "great", really`},
		{"whitespace", "a   b  \r\n\r\n\r\n\r\nc  ", "a b\n\nc"},
		{"tracking then protocol", "Link: https://example.com/?utm_source=x", "Link: example.com/"},
		{"html leaves double space", "<b>Bold</b> &amp; more", "Bold more"},
		{"punctuation", "Wow!!! Really?? Yes,, ok---- no....", "Wow! Really? Yes, ok--- no."},
		{"emoji kept by default", "hi 👋", "hi 👋"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(snap, rules.OnDemand, tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRun_AutoCopyDefaultsDoNothing(t *testing.T) {
	in := "a  b\u200B"
	res := Run(rules.DefaultSnapshot(), rules.AutoCopy, in)
	assert.Equal(t, in, res.Text)
	assert.Empty(t, res.Fired)
	assert.Empty(t, res.Changed)
}

func TestRun_ReportsChangedStages(t *testing.T) {
	res := Run(rules.DefaultSnapshot(), rules.OnDemand, "Hello\u200B  world")
	assert.Equal(t, "Hello world", res.Text)
	assert.Equal(t, []rules.StageID{rules.StageRemoveZeroWidth, rules.StageNormalizeSpaces}, res.Changed)
	assert.Len(t, res.Fired, 12)
	assert.GreaterOrEqual(t, res.Passes, 2)
}

func TestRun_DisabledStageNeverFires(t *testing.T) {
	cfgs := rules.DefaultConfigs()
	cfgs[rules.StageNormalizeSpaces] = rules.RuleConfig{Mode: rules.AutoClean, Enabled: false}
	snap := rules.NewSnapshot(rules.DefaultRuleSet(), cfgs)

	assert.Equal(t, "a  b", Clean(snap, rules.OnDemand, "a  b"))
	assert.Equal(t, "a  b", Clean(snap, rules.AutoCopy, "a  b"))
}

func TestRun_AutoCleanStage(t *testing.T) {
	cfgs := rules.DefaultConfigs()
	cfgs[rules.StageRemoveZeroWidth] = rules.RuleConfig{Mode: rules.AutoClean, Enabled: true}
	snap := rules.NewSnapshot(rules.DefaultRuleSet(), cfgs)

	// Only the auto-clean stage runs on copy.
	assert.Equal(t, "a  b", Clean(snap, rules.AutoCopy, "a \u200B b"))
	assert.Equal(t, "a b", Clean(snap, rules.OnDemand, "a \u200B b"))
}

func TestCustomRules_Chain(t *testing.T) {
	rs := rules.DefaultRuleSet().WithCustomRules([]rules.CustomRule{
		{Find: "a", Replace: "b"},
		{Find: "b", Replace: "c"},
	})
	snap := only(rs, rules.StageCustomRules)
	assert.Equal(t, "c", Clean(snap, rules.OnDemand, "a"))
}

func TestCustomRules_RunOnce(t *testing.T) {
	rs := rules.DefaultRuleSet().WithCustomRules([]rules.CustomRule{{Find: "a", Replace: "aa"}})
	snap := only(rs, rules.StageCustomRules, rules.StageNormalizeSpaces)
	assert.Equal(t, "aa", Clean(snap, rules.OnDemand, "a"))
}

func TestCustomRules_SkipEmptyFind(t *testing.T) {
	got := ApplyCustomRules([]rules.CustomRule{{Find: "", Replace: "x"}, {Find: "o", Replace: "0"}}, "foo")
	assert.Equal(t, "f00", got)
}

func TestCustomRules_OutputIsNormalized(t *testing.T) {
	rs := rules.DefaultRuleSet().WithCustomRules([]rules.CustomRule{{Find: "x", Replace: "  "}})
	assert.Equal(t, "a b", Clean(only(rs, rules.StageNormalizeSpaces), rules.OnDemand, "axb"))
}

func TestEmdashReplacementContainingDash(t *testing.T) {
	rs := rules.DefaultRuleSet().WithEmdashReplacement(" — ")
	snap := only(rs, rules.StageRemoveEmdashes)
	once := Clean(snap, rules.OnDemand, "a—b")
	assert.Equal(t, "a  b", once)
	assert.Equal(t, once, Clean(snap, rules.OnDemand, once))
}

var idempotenceCorpus = []string{
	"",
	"plain text",
	"wwwwww..",
	"http://www.http://example.com",
	"&am&amp;p; <<b>b>",
	"a —— b – c",
	"  \u00A0x\t \n\ty  ",
	"x\r\r\n\n\n\ny",
	"😀 emoji 👍🏽 1\uFE0F\u20E3 text",
	"See https://www.amazon.com/dp/B0/ref=x?tag=1&crid=2. Then www.example.com/?utm_source=a!",
	"----- ?!?! ..,,;; --",
	"“quoted” ‘single’ — dash",
	"<p>Hello&nbsp;&nbsp;world</p>\r\n\r\n\r\n<p>  next  </p>",
	"zero\u200Bwidth\uFEFF\u2063joined\u00ADsoft",
	"a . . . b ! ! ?",
	"<a href=\"https://youtu.be/x?si=1\">https://youtu.be/x?si=1</a>",
	strings.Repeat("word  ", 50) + "\n\n\n\n" + strings.Repeat("!", 10),
}

func TestRun_Idempotent(t *testing.T) {
	snaps := map[string]*rules.Snapshot{
		"defaults": rules.DefaultSnapshot(),
		"all":      allOn(),
		"no-protocols": only(rules.DefaultRuleSet(),
			rules.StageURLTracking, rules.StageHTMLTags, rules.StageExtraPunctuation,
			rules.StageNormalizeSpaces, rules.StageTrimLines),
		"html-only":  only(rules.DefaultRuleSet(), rules.StageHTMLTags),
		"emoji-only": only(rules.DefaultRuleSet(), rules.StageRemoveEmojis),
		"idempotent-custom": allOn(rules.CustomRule{Find: "dash", Replace: "—"}),
	}
	for name, snap := range snaps {
		for _, in := range idempotenceCorpus {
			once := Clean(snap, rules.OnDemand, in)
			twice := Clean(snap, rules.OnDemand, once)
			if once != twice {
				t.Errorf("[%s] not idempotent for %q:\n once  %q\n twice %q", name, in, once, twice)
			}
		}
	}
}

func TestRun_StageOrderRegression(t *testing.T) {
	// Punctuation collapse and whitespace trim commute on this corpus.
	a := only(rules.DefaultRuleSet(), rules.StageExtraPunctuation, rules.StageTrimLines)
	for _, in := range idempotenceCorpus {
		p := Stage(rules.StageTrimLines, a.Rules, Stage(rules.StageExtraPunctuation, a.Rules, in))
		q := Stage(rules.StageExtraPunctuation, a.Rules, Stage(rules.StageTrimLines, a.Rules, in))
		if p != q {
			t.Errorf("punctuation and trim do not commute for %q: %q vs %q", in, p, q)
		}
	}
}

func TestStages(t *testing.T) {
	rs := rules.DefaultRuleSet()
	tests := []struct {
		id   rules.StageID
		in   string
		want string
	}{
		{rules.StageRemoveEmojis, "Hi 👋🏽 there ✨ 123 #1 ©", "Hi  there  123 #1 "},
		{rules.StageRemoveEmojis, "play ▶️ back ◀️", "play  back "},
		{rules.StageRemoveEmojis, "info ℹ️ bang ‼️ what ⁉️", "info  bang  what "},
		{rules.StageRemoveEmojis, "keyboard ⌨️ m Ⓜ️ tm™ ↔️ ⤴️", "keyboard  m  tm  "},
		{rules.StageRemoveEmojis, "1\uFE0F\u20E3", "1"},
		{rules.StageRemoveEmdashes, "a—b–c", "a, b, c"},
		{rules.StageConvertSmartQuotes, "“a” ‘b’ «c»", `"a" 'b' «c»`},
		{rules.StageNormalizeSpaces, "a    b  c\t\td", "a b c\t\td"},
		{rules.StageNormalizeLineBreaks, "a\r\nb\rc\n", "a\nb\nc\n"},
		{rules.StageTrailingSpaces, "a   \nb \n c", "a\nb\n c"},
		{rules.StageExtraLineBreaks, "a\n\n\n\n\nb\n\nc", "a\n\nb\n\nc"},
		{rules.StageTrimLines, " \ta \u00A0\n  b  ", "a\nb"},
		{rules.StageURLTracking, "go https://x.com/a?s=1", "go https://x.com/a"},
		{rules.StageURLProtocols, "https://a.com http://www.b.com ftp://c", "a.com b.com c"},
		{rules.StageURLProtocols, "wwwwww..", ""},
		{rules.StageHTMLTags, "<b>x</b>&amp;&#39;y", "xy"},
		{rules.StageHTMLTags, "&am&amp;p;", ""},
		{rules.StageHTMLTags, "a < b & c", "a < b & c"},
		{rules.StageExtraPunctuation, "?!?! ..,,;; -----", "! .; ---"},
		{rules.StageID("unknown"), "same", "same"},
	}
	for _, tt := range tests {
		if got := Stage(tt.id, rs, tt.in); got != tt.want {
			t.Errorf("Stage(%s, %q) = %q, want %q", tt.id, tt.in, got, tt.want)
		}
	}
}
