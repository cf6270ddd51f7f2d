// Package rules holds the cleaning rule model: which stages run, in which
// invocation context, and the user's custom find/replace pairs.
package rules

// StageID identifies one pipeline stage. Values are stable and persisted.
type StageID string

const (
	StageRemoveEmojis        StageID = "remove_emojis"
	StageCustomRules         StageID = "custom_rules"
	StageRemoveZeroWidth     StageID = "remove_zero_width"
	StageRemoveEmdashes      StageID = "remove_emdashes"
	StageConvertSmartQuotes  StageID = "convert_smart_quotes"
	StageNormalizeSpaces     StageID = "normalize_spaces"
	StageNormalizeLineBreaks StageID = "normalize_line_breaks"
	StageTrailingSpaces      StageID = "remove_trailing_spaces"
	StageExtraLineBreaks     StageID = "remove_extra_line_breaks"
	StageTrimLines           StageID = "remove_leading_trailing_whitespace"
	StageURLTracking         StageID = "clean_url_tracking"
	StageURLProtocols        StageID = "strip_url_protocols"
	StageHTMLTags            StageID = "remove_html_tags"
	StageExtraPunctuation    StageID = "remove_extra_punctuation"
)

// StageInfo is display metadata for a stage (CLI and TUI rendering).
type StageInfo struct {
	ID          StageID
	Name        string
	Description string
}

var stageInfo = []StageInfo{
	{StageRemoveEmojis, "Remove Emojis", "Strips all emoji characters"},
	{StageCustomRules, "Custom Rules", "Applies your find/replace pairs in order"},
	{StageRemoveZeroWidth, "Remove Zero-Width Characters", "Removes invisible Unicode characters (AI watermarks)"},
	{StageRemoveEmdashes, "Remove Em-dashes", "Replaces em and en dashes with the configured text"},
	{StageConvertSmartQuotes, "Convert Smart Quotes", "Converts curly quotes to straight quotes"},
	{StageNormalizeSpaces, "Normalize Spaces", "Collapses multiple spaces into one"},
	{StageNormalizeLineBreaks, "Normalize Line Breaks", "Standardizes line endings to \\n"},
	{StageTrailingSpaces, "Remove Trailing Spaces", "Removes spaces at the end of lines"},
	{StageExtraLineBreaks, "Remove Extra Line Breaks", "Collapses 3+ line breaks into 2"},
	{StageTrimLines, "Trim Whitespace", "Trims start and end whitespace of every line"},
	{StageURLTracking, "Clean Tracking from URLs", "Removes UTM, fbclid and other tracking parameters"},
	{StageURLProtocols, "Strip URL Protocols", "Removes https://, http://, ftp:// and www. prefixes"},
	{StageHTMLTags, "Remove HTML Tags", "Removes <tags> and &entities;"},
	{StageExtraPunctuation, "Remove Extra Punctuation", "Collapses repeated punctuation"},
}

// AllStages returns every stage in pipeline order.
func AllStages() []StageID {
	ids := make([]StageID, len(stageInfo))
	for i, info := range stageInfo {
		ids[i] = info.ID
	}
	return ids
}

// Info returns display metadata for id.
func Info(id StageID) (StageInfo, bool) {
	for _, info := range stageInfo {
		if info.ID == id {
			return info, true
		}
	}
	return StageInfo{}, false
}

// Valid reports whether id names a known stage.
func (id StageID) Valid() bool {
	_, ok := Info(id)
	return ok
}

// ParseStageID accepts either the stage id or its index in pipeline order (1-based).
func ParseStageID(s string) (StageID, bool) {
	id := StageID(s)
	if id.Valid() {
		return id, true
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", false
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > len(stageInfo) {
		return "", false
	}
	return stageInfo[n-1].ID, true
}
