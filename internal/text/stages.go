package text

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/urlclean"
)

var (
	multiSpaceRe     = regexp.MustCompile(` {2,}`)
	spacesBeforeNLRe = regexp.MustCompile(` +\n`)
	extraNewlinesRe  = regexp.MustCompile(`\n{3,}`)
	htmlTagRe        = regexp.MustCompile(`<[^>]+>`)
	htmlEntityRe     = regexp.MustCompile(`&[a-zA-Z0-9#]+;`)
	sentencePunctRe  = regexp.MustCompile(`([.!?]){2,}`)
	clausePunctRe    = regexp.MustCompile(`([,;:]){2,}`)
	dashRunRe        = regexp.MustCompile(`(-){3,}`)
)

var (
	smartQuotes   = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
	lineEndings   = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	dashesInRepl  = strings.NewReplacer("—", "", "–", "")
	protocolParts = []string{"https://", "http://", "ftp://", "www."}
)

// stageFunc is one pipeline stage. Stages are total: they never fail and
// return their input when there is nothing to do.
type stageFunc func(rs rules.RuleSet, s string) string

var stageFuncs = map[rules.StageID]stageFunc{
	rules.StageRemoveEmojis: func(_ rules.RuleSet, s string) string { return RemoveEmojis(s) },
	rules.StageCustomRules: func(rs rules.RuleSet, s string) string {
		return ApplyCustomRules(rs.CustomRules(), s)
	},
	rules.StageRemoveZeroWidth:     func(_ rules.RuleSet, s string) string { return StripWatermarks(s) },
	rules.StageRemoveEmdashes:      replaceDashes,
	rules.StageConvertSmartQuotes:  func(_ rules.RuleSet, s string) string { return smartQuotes.Replace(s) },
	rules.StageNormalizeSpaces:     func(_ rules.RuleSet, s string) string { return multiSpaceRe.ReplaceAllLiteralString(s, " ") },
	rules.StageNormalizeLineBreaks: func(_ rules.RuleSet, s string) string { return lineEndings.Replace(s) },
	rules.StageTrailingSpaces:      func(_ rules.RuleSet, s string) string { return spacesBeforeNLRe.ReplaceAllLiteralString(s, "\n") },
	rules.StageExtraLineBreaks:     func(_ rules.RuleSet, s string) string { return extraNewlinesRe.ReplaceAllLiteralString(s, "\n\n") },
	rules.StageTrimLines:           func(_ rules.RuleSet, s string) string { return TrimLines(s) },
	rules.StageURLTracking:         func(_ rules.RuleSet, s string) string { return urlclean.CleanURLsInText(s) },
	rules.StageURLProtocols:        func(_ rules.RuleSet, s string) string { return StripProtocols(s) },
	rules.StageHTMLTags:            func(_ rules.RuleSet, s string) string { return StripHTML(s) },
	rules.StageExtraPunctuation:    func(_ rules.RuleSet, s string) string { return CollapsePunctuation(s) },
}

// replaceDashes swaps em and en dashes for the configured replacement. Dashes
// inside the replacement itself are dropped so the stage stays idempotent.
func replaceDashes(rs rules.RuleSet, s string) string {
	if !strings.ContainsAny(s, "—–") {
		return s
	}
	repl := dashesInRepl.Replace(rs.EmdashReplacement)
	return strings.NewReplacer("—", repl, "–", repl).Replace(s)
}

// TrimLines trims spaces and tabs from both ends of every line.
func TrimLines(s string) string {
	if strings.IndexFunc(s, isInlineSpace) < 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimFunc(l, isInlineSpace)
	}
	return strings.Join(lines, "\n")
}

func isInlineSpace(r rune) bool {
	return r == '\t' || unicode.Is(unicode.Zs, r)
}

// StripProtocols removes scheme and www. prefixes, keeping the domain visible.
// Removal repeats until none are left since deleting one can join the halves
// of another ("wwwwww.." becomes "www.").
func StripProtocols(s string) string {
	for {
		prev := s
		for _, p := range protocolParts {
			s = strings.ReplaceAll(s, p, "")
		}
		if s == prev {
			return s
		}
	}
}

// StripHTML removes tags and entities until none remain.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	for {
		prev := s
		s = htmlTagRe.ReplaceAllLiteralString(s, "")
		s = htmlEntityRe.ReplaceAllLiteralString(s, "")
		if s == prev {
			return s
		}
	}
}

// CollapsePunctuation reduces runs of sentence and clause punctuation to their
// last character and dash runs to three dashes.
func CollapsePunctuation(s string) string {
	s = sentencePunctRe.ReplaceAllString(s, "$1")
	s = clausePunctRe.ReplaceAllString(s, "$1")
	return dashRunRe.ReplaceAllLiteralString(s, "---")
}
