package rules

import (
	"encoding/json"
	"fmt"
)

// Mode says when a stage applies.
type Mode int

const (
	OnDemandOnly Mode = iota
	AutoClean
	Disabled
)

func (m Mode) String() string {
	switch m {
	case OnDemandOnly:
		return "OnDemandOnly"
	case AutoClean:
		return "AutoClean"
	case Disabled:
		return "Disabled"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the persisted names and the legacy hotkey/auto/disabled values.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "OnDemandOnly", "ondemand", "on-demand", "hotkey":
		return OnDemandOnly, nil
	case "AutoClean", "autoclean", "auto":
		return AutoClean, nil
	case "Disabled", "disabled", "off":
		return Disabled, nil
	}
	return OnDemandOnly, fmt.Errorf("unknown rule mode %q", s)
}

// Next cycles OnDemandOnly -> AutoClean -> Disabled -> OnDemandOnly.
func (m Mode) Next() Mode {
	return (m + 1) % 3
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// RuleConfig is the per-stage application mode plus a master toggle.
type RuleConfig struct {
	RuleID  StageID `json:"-"`
	Mode    Mode    `json:"mode"`
	Enabled bool    `json:"enabled"`
}

// AppliesOnDemand reports whether the stage fires on a user-triggered clean.
func (c RuleConfig) AppliesOnDemand() bool {
	return c.Enabled && (c.Mode == OnDemandOnly || c.Mode == AutoClean)
}

// AppliesOnAutoCopy reports whether the stage fires on clean-on-copy.
func (c RuleConfig) AppliesOnAutoCopy() bool {
	return c.Enabled && c.Mode == AutoClean
}

// DefaultConfig returns the config used when nothing is persisted for id.
func DefaultConfig(id StageID) RuleConfig {
	return RuleConfig{RuleID: id, Mode: OnDemandOnly, Enabled: id != StageRemoveEmojis}
}

// DefaultConfigs returns a config for every stage.
func DefaultConfigs() map[StageID]RuleConfig {
	out := make(map[StageID]RuleConfig, len(stageInfo))
	for _, id := range AllStages() {
		out[id] = DefaultConfig(id)
	}
	return out
}
