package rules

import "encoding/json"

// ruleSetJSON is the persisted form. Keys match the preference store keys.
type ruleSetJSON struct {
	RemoveEmojis                    bool         `json:"RemoveEmojis"`
	RemoveZeroWidthChars            bool         `json:"RemoveZeroWidthChars"`
	RemoveEmdashes                  bool         `json:"RemoveEmdashes"`
	ReplaceEmdashWith               string       `json:"ReplaceEmdashWith"`
	ConvertSmartQuotes              bool         `json:"ConvertSmartQuotes"`
	NormalizeSpaces                 bool         `json:"NormalizeSpaces"`
	NormalizeLineBreaks             bool         `json:"NormalizeLineBreaks"`
	RemoveTrailingSpaces            bool         `json:"RemoveTrailingSpaces"`
	RemoveExtraLineBreaks           bool         `json:"RemoveExtraLineBreaks"`
	RemoveLeadingTrailingWhitespace bool         `json:"RemoveLeadingTrailingWhitespace"`
	RemoveURLTracking               bool         `json:"RemoveUrlTracking"`
	StripURLProtocols               bool         `json:"RemoveUrls"`
	RemoveHTMLTags                  bool         `json:"RemoveHtmlTags"`
	RemoveExtraPunctuation          bool         `json:"RemoveExtraPunctuation"`
	CustomRules                     []CustomRule `json:"CustomRules"`
}

// FlagKeys maps each flag-backed stage to its preference key.
var FlagKeys = map[StageID]string{
	StageRemoveEmojis:        "RemoveEmojis",
	StageRemoveZeroWidth:     "RemoveZeroWidthChars",
	StageRemoveEmdashes:      "RemoveEmdashes",
	StageConvertSmartQuotes:  "ConvertSmartQuotes",
	StageNormalizeSpaces:     "NormalizeSpaces",
	StageNormalizeLineBreaks: "NormalizeLineBreaks",
	StageTrailingSpaces:      "RemoveTrailingSpaces",
	StageExtraLineBreaks:     "RemoveExtraLineBreaks",
	StageTrimLines:           "RemoveLeadingTrailingWhitespace",
	StageURLTracking:         "RemoveUrlTracking",
	StageURLProtocols:        "RemoveUrls",
	StageHTMLTags:            "RemoveHtmlTags",
	StageExtraPunctuation:    "RemoveExtraPunctuation",
}

func (r RuleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ruleSetJSON{
		RemoveEmojis:                    r.RemoveEmojis,
		RemoveZeroWidthChars:            r.RemoveZeroWidthChars,
		RemoveEmdashes:                  r.RemoveEmdashes,
		ReplaceEmdashWith:               r.EmdashReplacement,
		ConvertSmartQuotes:              r.ConvertSmartQuotes,
		NormalizeSpaces:                 r.NormalizeSpaces,
		NormalizeLineBreaks:             r.NormalizeLineBreaks,
		RemoveTrailingSpaces:            r.RemoveTrailingSpaces,
		RemoveExtraLineBreaks:           r.RemoveExtraLineBreaks,
		RemoveLeadingTrailingWhitespace: r.RemoveLeadingTrailingWhitespace,
		RemoveURLTracking:               r.RemoveURLTracking,
		StripURLProtocols:               r.StripURLProtocols,
		RemoveHTMLTags:                  r.RemoveHTMLTags,
		RemoveExtraPunctuation:          r.RemoveExtraPunctuation,
		CustomRules:                     r.customRules,
	})
}

// UnmarshalJSON starts from the defaults so missing keys keep their default.
func (r *RuleSet) UnmarshalJSON(data []byte) error {
	d := DefaultRuleSet()
	w := ruleSetJSON{
		RemoveEmojis:                    d.RemoveEmojis,
		RemoveZeroWidthChars:            d.RemoveZeroWidthChars,
		RemoveEmdashes:                  d.RemoveEmdashes,
		ReplaceEmdashWith:               d.EmdashReplacement,
		ConvertSmartQuotes:              d.ConvertSmartQuotes,
		NormalizeSpaces:                 d.NormalizeSpaces,
		NormalizeLineBreaks:             d.NormalizeLineBreaks,
		RemoveTrailingSpaces:            d.RemoveTrailingSpaces,
		RemoveExtraLineBreaks:           d.RemoveExtraLineBreaks,
		RemoveLeadingTrailingWhitespace: d.RemoveLeadingTrailingWhitespace,
		RemoveURLTracking:               d.RemoveURLTracking,
		StripURLProtocols:               d.StripURLProtocols,
		RemoveHTMLTags:                  d.RemoveHTMLTags,
		RemoveExtraPunctuation:          d.RemoveExtraPunctuation,
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = RuleSet{
		RemoveEmojis:                    w.RemoveEmojis,
		RemoveZeroWidthChars:            w.RemoveZeroWidthChars,
		RemoveEmdashes:                  w.RemoveEmdashes,
		ConvertSmartQuotes:              w.ConvertSmartQuotes,
		NormalizeSpaces:                 w.NormalizeSpaces,
		NormalizeLineBreaks:             w.NormalizeLineBreaks,
		RemoveTrailingSpaces:            w.RemoveTrailingSpaces,
		RemoveExtraLineBreaks:           w.RemoveExtraLineBreaks,
		RemoveLeadingTrailingWhitespace: w.RemoveLeadingTrailingWhitespace,
		RemoveURLTracking:               w.RemoveURLTracking,
		StripURLProtocols:               w.StripURLProtocols,
		RemoveHTMLTags:                  w.RemoveHTMLTags,
		RemoveExtraPunctuation:          w.RemoveExtraPunctuation,
		EmdashReplacement:               w.ReplaceEmdashWith,
	}
	*r = r.WithCustomRules(w.CustomRules)
	return nil
}
