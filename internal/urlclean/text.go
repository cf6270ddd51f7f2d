package urlclean

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile("(?i)(?:https?://|www\\.)[^\\s<>\"{}|\\\\^`\\[\\]]+")

// trailingPunct is sentence punctuation that usually ends a URL in prose.
const trailingPunct = ".,;:!?)'"

// CleanURLsInText cleans every URL-shaped substring of text. Matches are
// spliced back from last to first so earlier offsets stay valid.
func (c *Cleaner) CleanURLsInText(text string) string {
	matches := urlPattern.FindAllStringIndex(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		start, end := matches[i][0], matches[i][1]
		candidate := trimTrailing(text[start:end])
		if candidate == "" {
			continue
		}
		cleaned := c.Clean(candidate)
		if cleaned == candidate {
			continue
		}
		text = text[:start] + cleaned + text[start+len(candidate):]
	}
	return text
}

// FindURLs returns the URL-shaped substrings of text, trailing punctuation removed.
func FindURLs(text string) []string {
	var out []string
	for _, m := range urlPattern.FindAllString(text, -1) {
		if u := trimTrailing(m); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// trimTrailing drops trailing sentence punctuation. A closing parenthesis is
// kept when it balances an opening one inside the URL.
func trimTrailing(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		if !strings.ContainsRune(trailingPunct, rune(last)) {
			break
		}
		if last == ')' && strings.Count(s, "(") >= strings.Count(s, ")") {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// CleanURLsInText cleans every URL in text using the embedded table.
func CleanURLsInText(text string) string { return defaultCleaner.CleanURLsInText(text) }
