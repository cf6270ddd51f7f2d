package text

import (
	"strings"

	"github.com/clnbrd/clnbrd/internal/rules"
)

// ApplyCustomRules runs each rule as a literal replace-all, in order. Later
// rules see the output of earlier ones. Rules with an empty Find are skipped.
func ApplyCustomRules(list []rules.CustomRule, s string) string {
	for _, r := range list {
		if r.Find == "" {
			continue
		}
		s = strings.ReplaceAll(s, r.Find, r.Replace)
	}
	return s
}
