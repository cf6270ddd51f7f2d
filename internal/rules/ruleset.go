package rules

// DefaultEmdashReplacement is what em and en dashes become unless configured.
const DefaultEmdashReplacement = ", "

// CustomRule is a literal find/replace pair. An empty Find is skipped.
type CustomRule struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// RuleSet is an immutable value describing which built-in stages are switched on.
// Use the With* methods to derive modified copies.
type RuleSet struct {
	RemoveEmojis                    bool
	RemoveZeroWidthChars            bool
	RemoveEmdashes                  bool
	ConvertSmartQuotes              bool
	NormalizeSpaces                 bool
	NormalizeLineBreaks             bool
	RemoveTrailingSpaces            bool
	RemoveExtraLineBreaks           bool
	RemoveLeadingTrailingWhitespace bool
	RemoveURLTracking               bool
	StripURLProtocols               bool
	RemoveHTMLTags                  bool
	RemoveExtraPunctuation          bool

	EmdashReplacement string
	customRules       []CustomRule
}

// DefaultRuleSet returns every stage on except emoji removal.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		RemoveEmojis:                    false,
		RemoveZeroWidthChars:            true,
		RemoveEmdashes:                  true,
		ConvertSmartQuotes:              true,
		NormalizeSpaces:                 true,
		NormalizeLineBreaks:             true,
		RemoveTrailingSpaces:            true,
		RemoveExtraLineBreaks:           true,
		RemoveLeadingTrailingWhitespace: true,
		RemoveURLTracking:               true,
		StripURLProtocols:               true,
		RemoveHTMLTags:                  true,
		RemoveExtraPunctuation:          true,
		EmdashReplacement:               DefaultEmdashReplacement,
	}
}

type flagAccessor struct {
	get func(RuleSet) bool
	set func(*RuleSet, bool)
}

// flags maps each flag-backed stage to its field. custom_rules has no flag.
var flags = map[StageID]flagAccessor{
	StageRemoveEmojis: {
		func(r RuleSet) bool { return r.RemoveEmojis },
		func(r *RuleSet, v bool) { r.RemoveEmojis = v },
	},
	StageRemoveZeroWidth: {
		func(r RuleSet) bool { return r.RemoveZeroWidthChars },
		func(r *RuleSet, v bool) { r.RemoveZeroWidthChars = v },
	},
	StageRemoveEmdashes: {
		func(r RuleSet) bool { return r.RemoveEmdashes },
		func(r *RuleSet, v bool) { r.RemoveEmdashes = v },
	},
	StageConvertSmartQuotes: {
		func(r RuleSet) bool { return r.ConvertSmartQuotes },
		func(r *RuleSet, v bool) { r.ConvertSmartQuotes = v },
	},
	StageNormalizeSpaces: {
		func(r RuleSet) bool { return r.NormalizeSpaces },
		func(r *RuleSet, v bool) { r.NormalizeSpaces = v },
	},
	StageNormalizeLineBreaks: {
		func(r RuleSet) bool { return r.NormalizeLineBreaks },
		func(r *RuleSet, v bool) { r.NormalizeLineBreaks = v },
	},
	StageTrailingSpaces: {
		func(r RuleSet) bool { return r.RemoveTrailingSpaces },
		func(r *RuleSet, v bool) { r.RemoveTrailingSpaces = v },
	},
	StageExtraLineBreaks: {
		func(r RuleSet) bool { return r.RemoveExtraLineBreaks },
		func(r *RuleSet, v bool) { r.RemoveExtraLineBreaks = v },
	},
	StageTrimLines: {
		func(r RuleSet) bool { return r.RemoveLeadingTrailingWhitespace },
		func(r *RuleSet, v bool) { r.RemoveLeadingTrailingWhitespace = v },
	},
	StageURLTracking: {
		func(r RuleSet) bool { return r.RemoveURLTracking },
		func(r *RuleSet, v bool) { r.RemoveURLTracking = v },
	},
	StageURLProtocols: {
		func(r RuleSet) bool { return r.StripURLProtocols },
		func(r *RuleSet, v bool) { r.StripURLProtocols = v },
	},
	StageHTMLTags: {
		func(r RuleSet) bool { return r.RemoveHTMLTags },
		func(r *RuleSet, v bool) { r.RemoveHTMLTags = v },
	},
	StageExtraPunctuation: {
		func(r RuleSet) bool { return r.RemoveExtraPunctuation },
		func(r *RuleSet, v bool) { r.RemoveExtraPunctuation = v },
	},
}

// HasFlag reports whether id is backed by a boolean flag.
func HasFlag(id StageID) bool {
	_, ok := flags[id]
	return ok
}

// Flag reports whether the stage is switched on. The custom rules stage is on
// whenever at least one rule exists.
func (r RuleSet) Flag(id StageID) bool {
	if id == StageCustomRules {
		return len(r.customRules) > 0
	}
	acc, ok := flags[id]
	if !ok {
		return false
	}
	return acc.get(r)
}

// WithFlag returns a copy with the stage flag set. Unknown ids and the custom
// rules stage leave the copy unchanged.
func (r RuleSet) WithFlag(id StageID, on bool) RuleSet {
	out := r.clone()
	if acc, ok := flags[id]; ok {
		acc.set(&out, on)
	}
	return out
}

// WithEmdashReplacement returns a copy using s for em and en dashes.
func (r RuleSet) WithEmdashReplacement(s string) RuleSet {
	out := r.clone()
	out.EmdashReplacement = s
	return out
}

// CustomRules returns a copy of the ordered custom rule list.
func (r RuleSet) CustomRules() []CustomRule {
	if len(r.customRules) == 0 {
		return nil
	}
	out := make([]CustomRule, len(r.customRules))
	copy(out, r.customRules)
	return out
}

// WithCustomRules returns a copy holding its own copy of rules.
func (r RuleSet) WithCustomRules(rules []CustomRule) RuleSet {
	out := r
	out.customRules = nil
	if len(rules) > 0 {
		out.customRules = make([]CustomRule, len(rules))
		copy(out.customRules, rules)
	}
	return out
}

// WithCustomRule returns a copy with rule appended.
func (r RuleSet) WithCustomRule(rule CustomRule) RuleSet {
	return r.WithCustomRules(append(r.CustomRules(), rule))
}

// WithoutCustomRule returns a copy with the rule at index i removed.
func (r RuleSet) WithoutCustomRule(i int) RuleSet {
	rules := r.CustomRules()
	if i < 0 || i >= len(rules) {
		return r.clone()
	}
	return r.WithCustomRules(append(rules[:i], rules[i+1:]...))
}

func (r RuleSet) clone() RuleSet {
	return r.WithCustomRules(r.customRules)
}
