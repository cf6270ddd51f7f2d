package rules

import (
	"encoding/json"
	"testing"
)

func TestRuleConfigPredicates(t *testing.T) {
	tests := []struct {
		mode     Mode
		enabled  bool
		onDemand bool
		autoCopy bool
	}{
		{OnDemandOnly, true, true, false},
		{AutoClean, true, true, true},
		{Disabled, true, false, false},
		{OnDemandOnly, false, false, false},
		{AutoClean, false, false, false},
		{Disabled, false, false, false},
	}
	for _, tt := range tests {
		c := RuleConfig{Mode: tt.mode, Enabled: tt.enabled}
		if got := c.AppliesOnDemand(); got != tt.onDemand {
			t.Errorf("%v enabled=%v AppliesOnDemand = %v, want %v", tt.mode, tt.enabled, got, tt.onDemand)
		}
		if got := c.AppliesOnAutoCopy(); got != tt.autoCopy {
			t.Errorf("%v enabled=%v AppliesOnAutoCopy = %v, want %v", tt.mode, tt.enabled, got, tt.autoCopy)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	for id, cfg := range DefaultConfigs() {
		if cfg.Mode != OnDemandOnly {
			t.Errorf("%s default mode = %v", id, cfg.Mode)
		}
		if want := id != StageRemoveEmojis; cfg.Enabled != want {
			t.Errorf("%s default enabled = %v, want %v", id, cfg.Enabled, want)
		}
	}
}

func TestModeJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{`"OnDemandOnly"`, OnDemandOnly},
		{`"AutoClean"`, AutoClean},
		{`"Disabled"`, Disabled},
		{`"hotkey"`, OnDemandOnly},
		{`"auto"`, AutoClean},
		{`"disabled"`, Disabled},
	}
	for _, tt := range tests {
		var m Mode
		if err := json.Unmarshal([]byte(tt.in), &m); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if m != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, m, tt.want)
		}
	}

	var m Mode
	if err := json.Unmarshal([]byte(`"sometimes"`), &m); err == nil {
		t.Error("expected error for unknown mode")
	}

	data, _ := json.Marshal(RuleConfig{Mode: AutoClean, Enabled: true})
	if string(data) != `{"mode":"AutoClean","enabled":true}` {
		t.Errorf("Marshal = %s", data)
	}
}

func TestModeNext(t *testing.T) {
	if OnDemandOnly.Next() != AutoClean || AutoClean.Next() != Disabled || Disabled.Next() != OnDemandOnly {
		t.Error("Next does not cycle through all modes")
	}
}
