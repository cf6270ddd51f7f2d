// Package urlclean strips tracking parameters from URLs. The rules come from an
// embedded, ordered domain table: a universal deny-list plus per-domain
// removals, allow-lists and path truncations.
package urlclean

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

//go:embed domains.json
var embedded []byte

type rawPath struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

type rawRule struct {
	Domain string    `json:"domain"`
	Remove []string  `json:"remove"`
	Keep   []string  `json:"keep"`
	Paths  []rawPath `json:"paths"`
}

type rawTable struct {
	Global  []string  `json:"global"`
	Domains []rawRule `json:"domains"`
}

// PathRule truncates the path at the first occurrence of Pattern and appends
// Replacement.
type PathRule struct {
	Pattern     string
	Replacement string
}

// Rule is the per-domain cleaning rule. Keep, when non-nil, is an allow-list:
// only those parameters survive and the deny-lists are ignored.
type Rule struct {
	Domain string
	Remove map[string]struct{}
	Keep   map[string]struct{}
	Paths  []PathRule
}

// Cleaner applies a compiled domain table. It is immutable and safe for
// concurrent use.
type Cleaner struct {
	global map[string]struct{}
	rules  []Rule
}

var defaultCleaner = mustLoad(embedded)

// Default returns the cleaner built from the embedded table.
func Default() *Cleaner { return defaultCleaner }

func mustLoad(data []byte) *Cleaner {
	c, err := Load(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Load compiles a domain table document. Parameter names are lower-cased;
// domain order is kept since the first match wins.
func Load(data []byte) (*Cleaner, error) {
	var raw rawTable
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("urlclean: parse domain table: %w", err)
	}
	c := &Cleaner{global: toSet(raw.Global)}
	for _, r := range raw.Domains {
		d := strings.ToLower(strings.TrimSpace(r.Domain))
		if d == "" {
			return nil, fmt.Errorf("urlclean: domain rule with empty domain")
		}
		rule := Rule{Domain: d, Remove: toSet(r.Remove)}
		if r.Keep != nil {
			rule.Keep = toSet(r.Keep)
		}
		for _, p := range r.Paths {
			if p.Pattern == "" {
				continue
			}
			rule.Paths = append(rule.Paths, PathRule{Pattern: p.Pattern, Replacement: p.Replacement})
		}
		c.rules = append(c.rules, rule)
	}
	return c, nil
}

func toSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[strings.ToLower(n)] = struct{}{}
	}
	return m
}

// Domains lists the configured domains in match order.
func (c *Cleaner) Domains() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Domain
	}
	return out
}

// GlobalParamCount returns the size of the universal deny-list.
func (c *Cleaner) GlobalParamCount() int { return len(c.global) }

// Match returns the first rule whose domain equals host or is a parent domain
// of it.
func (c *Cleaner) Match(host string) (Rule, bool) {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, r := range c.rules {
		if host == r.Domain || strings.HasSuffix(host, "."+r.Domain) {
			return r, true
		}
	}
	return Rule{}, false
}

// Report describes one URL clean.
type Report struct {
	Input   string   `json:"input"`
	Output  string   `json:"output"`
	Domain  string   `json:"domain,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Path    bool     `json:"path_truncated,omitempty"`
}

// Changed reports whether the URL was rewritten.
func (r Report) Changed() bool { return r.Input != r.Output }

// Clean returns raw without its tracking parameters. Anything that does not
// parse as a URL with a host is returned unchanged.
func (c *Cleaner) Clean(raw string) string {
	return c.Explain(raw).Output
}

// Explain cleans raw and reports what was removed.
func (c *Cleaner) Explain(raw string) Report {
	rep := Report{Input: raw, Output: raw}

	s := raw
	synthesized := false
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if strings.Contains(s, "://") {
			return rep
		}
		s = "https://" + s
		synthesized = true
	}

	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return rep
	}
	rule, matched := c.Match(u.Hostname())
	if matched {
		rep.Domain = rule.Domain
	}

	// Work on the raw string so surviving pairs keep their exact encoding.
	frag, hasFrag := "", false
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s, frag, hasFrag = s[:i], s[i+1:], true
	}
	base, query, hasQuery := strings.Cut(s, "?")

	if matched && len(rule.Paths) > 0 {
		base, rep.Path = truncatePath(base, rule.Paths)
	}

	var kept []string
	if hasQuery {
		for _, pair := range strings.Split(query, "&") {
			if pair == "" {
				continue
			}
			name := paramName(pair)
			if c.keepParam(rule, matched, name) {
				kept = append(kept, pair)
			} else {
				rep.Removed = append(rep.Removed, name)
			}
		}
	}

	if len(rep.Removed) == 0 && !rep.Path {
		return rep
	}

	var b strings.Builder
	b.Grow(len(raw))
	b.WriteString(base)
	if len(kept) > 0 {
		b.WriteByte('?')
		b.WriteString(strings.Join(kept, "&"))
	}
	if hasFrag {
		b.WriteByte('#')
		b.WriteString(frag)
	}
	out := b.String()
	if synthesized {
		out = strings.TrimPrefix(out, "https://")
	}
	rep.Output = out
	return rep
}

func (c *Cleaner) keepParam(rule Rule, matched bool, name string) bool {
	if matched && rule.Keep != nil {
		_, ok := rule.Keep[name]
		return ok
	}
	if _, ok := c.global[name]; ok {
		return false
	}
	if matched {
		if _, ok := rule.Remove[name]; ok {
			return false
		}
	}
	return true
}

// paramName returns the decoded, lower-cased key of a raw key=value pair.
func paramName(pair string) string {
	key, _, _ := strings.Cut(pair, "=")
	if dec, err := url.QueryUnescape(key); err == nil {
		key = dec
	}
	return strings.ToLower(key)
}

// truncatePath applies path rules to the path part of base (scheme://authority/path).
func truncatePath(base string, paths []PathRule) (string, bool) {
	i := strings.Index(base, "://")
	if i < 0 {
		return base, false
	}
	slash := strings.IndexByte(base[i+3:], '/')
	if slash < 0 {
		return base, false
	}
	start := i + 3 + slash
	path := base[start:]
	changed := false
	for _, p := range paths {
		if idx := strings.Index(path, p.Pattern); idx >= 0 {
			path = path[:idx] + p.Replacement
			changed = true
		}
	}
	return base[:start] + path, changed
}

// Clean strips tracking parameters from raw using the embedded table.
func Clean(raw string) string { return defaultCleaner.Clean(raw) }

// Explain is Clean with a report, using the embedded table.
func Explain(raw string) Report { return defaultCleaner.Explain(raw) }
