package clipboard

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// ExtractText returns the best plain text in p. Plain text wins, then RTF,
// then HTML. ok is false when no text representation is present.
func ExtractText(p Payload) (text string, from Format, ok bool) {
	if b, found := p.Get(FormatPlain); found && len(b) > 0 {
		return validText(b), FormatPlain, true
	}
	if b, found := p.Get(FormatRTF); found && len(b) > 0 {
		return RTFToText(b), FormatRTF, true
	}
	if b, found := p.Get(FormatHTML); found && len(b) > 0 {
		return HTMLToText(b), FormatHTML, true
	}
	return "", "", false
}

var skipHTMLTags = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
	"title":  true,
}

var blockHTMLTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "section": true, "article": true,
}

// HTMLToText walks the markup with the tokenizer and keeps text nodes. Block
// tags become line breaks; script, style and head content is dropped.
func HTMLToText(markup []byte) string {
	z := html.NewTokenizer(bytes.NewReader(markup))
	var b strings.Builder
	b.Grow(len(markup))
	depth := 0
	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipHTMLTags[tag] && tt == html.StartTagToken {
				depth++
			}
			if blockHTMLTags[tag] && depth == 0 {
				newline()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipHTMLTags[tag] && depth > 0 {
				depth--
			}
			if blockHTMLTags[tag] && depth == 0 {
				newline()
			}
		case html.TextToken:
			if depth > 0 {
				continue
			}
			b.Write(z.Text())
		}
	}
	return strings.TrimSpace(b.String())
}

// rtfSkipDestinations are groups whose content is not document text.
var rtfSkipDestinations = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"pict": true, "header": true, "footer": true, "expandedcolortbl": true,
	"listtable": true, "listoverridetable": true, "generator": true,
}

// RTFToText decodes the text of an RTF document: control words for breaks and
// tabs, \'hh and \uN escapes, and skipped destination groups.
func RTFToText(doc []byte) string {
	var b strings.Builder
	type group struct {
		skip   bool
		ucSkip int
	}
	stack := []group{{ucSkip: 1}}
	cur := func() *group { return &stack[len(stack)-1] }
	pendingSkip := 0 // fallback chars to drop after \uN
	var high rune    // high surrogate waiting for its \uN partner

	i := 0
	for i < len(doc) {
		c := doc[i]
		switch c {
		case '{':
			stack = append(stack, *cur())
			i++
			continue
		case '}':
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			i++
			continue
		case '\r', '\n':
			i++
			continue
		case '\\':
			i++
			if i >= len(doc) {
				continue
			}
			n := doc[i]
			switch {
			case n == '\\' || n == '{' || n == '}':
				if !cur().skip {
					b.WriteByte(n)
				}
				i++
			case n == '\'':
				if i+3 <= len(doc) {
					if v, err := strconv.ParseUint(string(doc[i+1:i+3]), 16, 8); err == nil {
						if pendingSkip > 0 {
							pendingSkip--
						} else if !cur().skip {
							b.WriteRune(charmap.Windows1252.DecodeByte(byte(v)))
						}
					}
				}
				i += 3
			case n == '~':
				if !cur().skip {
					b.WriteRune('\u00a0')
				}
				i++
			case n == '*':
				cur().skip = true
				i++
			case isASCIILetter(n):
				start := i
				for i < len(doc) && isASCIILetter(doc[i]) {
					i++
				}
				word := string(doc[start:i])
				numStart := i
				if i < len(doc) && (doc[i] == '-' || isDigit(doc[i])) {
					i++
					for i < len(doc) && isDigit(doc[i]) {
						i++
					}
				}
				param, hasParam := 0, i > numStart
				if hasParam {
					param, _ = strconv.Atoi(string(doc[numStart:i]))
				}
				if i < len(doc) && doc[i] == ' ' {
					i++
				}
				g := cur()
				if rtfSkipDestinations[word] {
					g.skip = true
					continue
				}
				if g.skip {
					continue
				}
				switch word {
				case "par", "line", "sect", "row":
					b.WriteByte('\n')
				case "tab", "cell":
					b.WriteByte('\t')
				case "emdash":
					b.WriteRune('—')
				case "endash":
					b.WriteRune('–')
				case "lquote":
					b.WriteRune('‘')
				case "rquote":
					b.WriteRune('’')
				case "ldblquote":
					b.WriteRune('“')
				case "rdblquote":
					b.WriteRune('”')
				case "bullet":
					b.WriteRune('•')
				case "uc":
					if hasParam {
						g.ucSkip = param
					}
				case "u":
					if hasParam {
						if param < 0 {
							param += 65536
						}
						r := rune(param)
						switch {
						case high != 0 && utf16.IsSurrogate(r) && r >= 0xDC00:
							b.WriteRune(utf16.DecodeRune(high, r))
							high = 0
						case utf16.IsSurrogate(r) && r < 0xDC00:
							high = r // an unpaired high surrogate is dropped
						default:
							high = 0
							b.WriteRune(r)
						}
						pendingSkip = g.ucSkip
					}
				}
			default:
				i++
			}
			continue
		}

		if pendingSkip > 0 {
			pendingSkip--
			i++
			continue
		}
		if !cur().skip {
			b.WriteByte(c)
		}
		i++
	}
	return strings.TrimSpace(b.String())
}

func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool       { return c >= '0' && c <= '9' }
