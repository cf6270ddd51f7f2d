package rules

import (
	"fmt"
	"strings"
)

// Context is the invocation context a clean runs under.
type Context int

const (
	// OnDemand is a user-triggered clean or clean-and-paste.
	OnDemand Context = iota
	// AutoCopy is the background clean fired on every clipboard change.
	AutoCopy
)

func (c Context) String() string {
	if c == AutoCopy {
		return "auto"
	}
	return "on-demand"
}

// ParseContext accepts the String forms plus a few spellings used by the CLI
// and the HTTP API. Empty means OnDemand.
func ParseContext(s string) (Context, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "on-demand", "on_demand", "ondemand", "hotkey":
		return OnDemand, nil
	case "auto", "auto-copy", "auto_copy", "autocopy":
		return AutoCopy, nil
	}
	return OnDemand, fmt.Errorf("unknown context %q", s)
}

// Snapshot is the rule configuration captured by one invocation. Treat it as
// read-only; the Store never mutates a published snapshot.
type Snapshot struct {
	Rules   RuleSet
	configs map[StageID]RuleConfig
}

// NewSnapshot builds a snapshot from rs and cfgs. Missing stage configs fall
// back to DefaultConfig.
func NewSnapshot(rs RuleSet, cfgs map[StageID]RuleConfig) *Snapshot {
	s := &Snapshot{Rules: rs.clone(), configs: make(map[StageID]RuleConfig, len(stageInfo))}
	for _, id := range AllStages() {
		cfg, ok := cfgs[id]
		if !ok {
			cfg = DefaultConfig(id)
		}
		cfg.RuleID = id
		s.configs[id] = cfg
	}
	return s
}

// DefaultSnapshot returns the snapshot for a fresh install.
func DefaultSnapshot() *Snapshot {
	return NewSnapshot(DefaultRuleSet(), DefaultConfigs())
}

// Config returns the RuleConfig of id.
func (s *Snapshot) Config(id StageID) RuleConfig {
	if cfg, ok := s.configs[id]; ok {
		return cfg
	}
	return DefaultConfig(id)
}

// Configs returns a copy of every stage config.
func (s *Snapshot) Configs() map[StageID]RuleConfig {
	out := make(map[StageID]RuleConfig, len(s.configs))
	for id, cfg := range s.configs {
		out[id] = cfg
	}
	return out
}

// Applies reports whether id fires in ctx: the RuleSet flag must be on and the
// RuleConfig must apply in that context.
func (s *Snapshot) Applies(id StageID, ctx Context) bool {
	if !s.Rules.Flag(id) {
		return false
	}
	cfg := s.Config(id)
	if ctx == AutoCopy {
		return cfg.AppliesOnAutoCopy()
	}
	return cfg.AppliesOnDemand()
}

// ActiveStages lists the stages that fire in ctx, in pipeline order.
func (s *Snapshot) ActiveStages(ctx Context) []StageID {
	var out []StageID
	for _, id := range AllStages() {
		if s.Applies(id, ctx) {
			out = append(out, id)
		}
	}
	return out
}

// AnyAutoClean reports whether at least one stage fires on auto-copy.
func (s *Snapshot) AnyAutoClean() bool {
	return len(s.ActiveStages(AutoCopy)) > 0
}

func (s *Snapshot) clone() *Snapshot {
	return NewSnapshot(s.Rules, s.configs)
}
