package clipboard

import (
	"net/url"
	"strings"
)

// maxURLLength bounds what is treated as a single copied link.
const maxURLLength = 2048

type Validator struct {
	allowedSchemes map[string]bool
}

func NewValidator() *Validator {
	return &Validator{
		allowedSchemes: map[string]bool{"http": true, "https": true},
	}
}

// ExtractURL returns text trimmed when it is exactly one http(s) or bare www.
// link, or "" otherwise. The link is returned as written, not re-encoded.
func (v *Validator) ExtractURL(text string) string {
	text = strings.TrimSpace(text)

	// Quick reject: too long, multi-line, or containing spaces
	if len(text) > maxURLLength || strings.ContainsAny(text, "\n\r\t ") {
		return ""
	}

	candidate := text
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
	case strings.HasPrefix(lower, "www."):
		candidate = "https://" + text
	default:
		return ""
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" || !v.allowedSchemes[parsed.Scheme] {
		return ""
	}

	return text
}

// ReadURL returns the link on board, or "" when it holds anything else.
func ReadURL(board Board) string {
	p, err := board.Snapshot()
	if err != nil {
		return ""
	}
	text, _, ok := ExtractText(p)
	if !ok {
		return ""
	}
	return NewValidator().ExtractURL(text)
}
