package rules

import (
	"encoding/json"
	"testing"
)

func TestDefaultRuleSet(t *testing.T) {
	rs := DefaultRuleSet()
	for _, id := range AllStages() {
		want := id != StageRemoveEmojis && id != StageCustomRules
		if got := rs.Flag(id); got != want {
			t.Errorf("Flag(%s) = %v, want %v", id, got, want)
		}
	}
	if rs.EmdashReplacement != ", " {
		t.Errorf("EmdashReplacement = %q, want %q", rs.EmdashReplacement, ", ")
	}
}

func TestFlagTableCoversEveryStage(t *testing.T) {
	for _, id := range AllStages() {
		if id == StageCustomRules {
			if HasFlag(id) {
				t.Errorf("custom rules should not be flag backed")
			}
			continue
		}
		if !HasFlag(id) {
			t.Errorf("stage %s has no flag accessor", id)
		}
		if _, ok := FlagKeys[id]; !ok {
			t.Errorf("stage %s has no preference key", id)
		}
	}
}

func TestWithFlag_ReturnsCopy(t *testing.T) {
	rs := DefaultRuleSet()
	off := rs.WithFlag(StageNormalizeSpaces, false)

	if !rs.NormalizeSpaces {
		t.Error("WithFlag mutated the receiver")
	}
	if off.NormalizeSpaces {
		t.Error("WithFlag did not clear the flag")
	}
	if got := rs.WithFlag(StageRemoveEmojis, true); !got.RemoveEmojis {
		t.Error("WithFlag did not set RemoveEmojis")
	}
}

func TestCustomRules_NoAliasing(t *testing.T) {
	in := []CustomRule{{Find: "a", Replace: "b"}}
	rs := DefaultRuleSet().WithCustomRules(in)
	in[0].Find = "changed"

	if got := rs.CustomRules()[0].Find; got != "a" {
		t.Errorf("rule set aliased caller slice, Find = %q", got)
	}

	out := rs.CustomRules()
	out[0].Replace = "zzz"
	if got := rs.CustomRules()[0].Replace; got != "b" {
		t.Errorf("CustomRules() leaked internal slice, Replace = %q", got)
	}
}

func TestCustomRulesFlag(t *testing.T) {
	rs := DefaultRuleSet()
	if rs.Flag(StageCustomRules) {
		t.Error("custom rules flag on with no rules")
	}
	rs = rs.WithCustomRule(CustomRule{Find: "x", Replace: "y"})
	if !rs.Flag(StageCustomRules) {
		t.Error("custom rules flag off with one rule")
	}
	rs = rs.WithoutCustomRule(0)
	if rs.Flag(StageCustomRules) {
		t.Error("custom rules flag on after removing the only rule")
	}
	if got := rs.WithoutCustomRule(5); len(got.CustomRules()) != 0 {
		t.Error("out of range removal changed the list")
	}
}

func TestRuleSetJSON(t *testing.T) {
	rs := DefaultRuleSet().
		WithFlag(StageRemoveEmojis, true).
		WithFlag(StageURLProtocols, false).
		WithEmdashReplacement(" - ").
		WithCustomRule(CustomRule{Find: "foo", Replace: "bar"})

	data, err := json.Marshal(rs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if raw["RemoveUrls"] != false {
		t.Errorf("RemoveUrls = %v, want false", raw["RemoveUrls"])
	}
	if raw["ReplaceEmdashWith"] != " - " {
		t.Errorf("ReplaceEmdashWith = %v", raw["ReplaceEmdashWith"])
	}

	var back RuleSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.RemoveEmojis || back.StripURLProtocols || back.EmdashReplacement != " - " {
		t.Errorf("decoded rule set differs: %+v", back)
	}
	if rules := back.CustomRules(); len(rules) != 1 || rules[0].Find != "foo" {
		t.Errorf("decoded custom rules = %+v", rules)
	}
}

func TestRuleSetJSON_MissingKeysKeepDefaults(t *testing.T) {
	var rs RuleSet
	if err := json.Unmarshal([]byte(`{"RemoveEmojis": true}`), &rs); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !rs.RemoveEmojis {
		t.Error("RemoveEmojis not decoded")
	}
	if !rs.NormalizeSpaces || rs.EmdashReplacement != DefaultEmdashReplacement {
		t.Errorf("missing keys lost their defaults: %+v", rs)
	}
}

func TestParseStageID(t *testing.T) {
	tests := []struct {
		in   string
		want StageID
		ok   bool
	}{
		{"remove_emojis", StageRemoveEmojis, true},
		{"1", StageRemoveEmojis, true},
		{"14", StageExtraPunctuation, true},
		{"15", "", false},
		{"0", "", false},
		{"", "", false},
		{"nope", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStageID(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseStageID(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStageOrder(t *testing.T) {
	want := []StageID{
		StageRemoveEmojis, StageCustomRules, StageRemoveZeroWidth, StageRemoveEmdashes,
		StageConvertSmartQuotes, StageNormalizeSpaces, StageNormalizeLineBreaks,
		StageTrailingSpaces, StageExtraLineBreaks, StageTrimLines, StageURLTracking,
		StageURLProtocols, StageHTMLTags, StageExtraPunctuation,
	}
	got := AllStages()
	if len(got) != len(want) {
		t.Fatalf("AllStages() has %d stages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, got[i], want[i])
		}
	}
}
