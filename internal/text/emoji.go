package text

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
)

// emojiTable holds every code point with the Unicode Emoji property, the
// whole misc symbols and dingbats blocks, and the keycap, presentation and
// tag code points that only make sense next to an emoji. ASCII digits, '#'
// and '*' carry the Emoji property but are kept.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00A9, Hi: 0x00AE, Stride: 5}, // © ®
		{Lo: 0x203C, Hi: 0x2049, Stride: 13},
		{Lo: 0x20E3, Hi: 0x20E3, Stride: 1}, // combining enclosing keycap
		{Lo: 0x2122, Hi: 0x2139, Stride: 23},
		{Lo: 0x2194, Hi: 0x2199, Stride: 1},
		{Lo: 0x21A9, Hi: 0x21AA, Stride: 1},
		{Lo: 0x231A, Hi: 0x231B, Stride: 1},
		{Lo: 0x2328, Hi: 0x2328, Stride: 1},
		{Lo: 0x23CF, Hi: 0x23CF, Stride: 1},
		{Lo: 0x23E9, Hi: 0x23F3, Stride: 1},
		{Lo: 0x23F8, Hi: 0x23FA, Stride: 1},
		{Lo: 0x24C2, Hi: 0x24C2, Stride: 1},
		{Lo: 0x25AA, Hi: 0x25AB, Stride: 1},
		{Lo: 0x25B6, Hi: 0x25C0, Stride: 10},
		{Lo: 0x25FB, Hi: 0x25FE, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2B05, Hi: 0x2B07, Stride: 1},
		{Lo: 0x2B1B, Hi: 0x2B1C, Stride: 1},
		{Lo: 0x2B50, Hi: 0x2B55, Stride: 5},
		{Lo: 0x3030, Hi: 0x303D, Stride: 13},
		{Lo: 0x3297, Hi: 0x3299, Stride: 2},
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1}, // emoji presentation selector
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1}, // mahjong through symbols and pictographs ext-A
		{Lo: 0xE0020, Hi: 0xE007F, Stride: 1}, // tag sequences
	},
	LatinOffset: 1,
}

var emojiPool = sync.Pool{
	New: func() any {
		return runes.Remove(runes.In(emojiTable))
	},
}

// IsEmoji reports whether r is removed by the emoji stage.
func IsEmoji(r rune) bool {
	return unicode.Is(emojiTable, r)
}

// RemoveEmojis drops every emoji code point from s.
func RemoveEmojis(s string) string {
	if strings.IndexFunc(s, IsEmoji) < 0 {
		return s
	}
	return removeWith(&emojiPool, s)
}
