package text

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// watermarkTable lists the invisible code points AI tools and editors leave behind.
var watermarkTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00AD, Hi: 0x00AD, Stride: 1}, // soft hyphen
		{Lo: 0x034F, Hi: 0x034F, Stride: 1}, // combining grapheme joiner
		{Lo: 0x180E, Hi: 0x180E, Stride: 1}, // mongolian vowel separator
		{Lo: 0x200B, Hi: 0x200D, Stride: 1}, // zero width space, non-joiner, joiner
		{Lo: 0x2060, Hi: 0x2064, Stride: 1}, // word joiner, invisible operators
		{Lo: 0xFE00, Hi: 0xFE0F, Stride: 1}, // variation selectors
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1}, // BOM
	},
}

var watermarkPool = sync.Pool{
	New: func() any {
		return runes.Remove(runes.In(watermarkTable))
	},
}

// IsWatermark reports whether r is one of the stripped invisible code points.
func IsWatermark(r rune) bool {
	return unicode.Is(watermarkTable, r)
}

// StripWatermarks removes every watermark code point from s.
func StripWatermarks(s string) string {
	if !ContainsWatermarks(s) {
		return s
	}
	return removeWith(&watermarkPool, s)
}

// ContainsWatermarks reports whether s holds at least one watermark code point.
func ContainsWatermarks(s string) bool {
	return strings.IndexFunc(s, IsWatermark) >= 0
}

// CountWatermarks returns how many watermark code points s holds.
func CountWatermarks(s string) int {
	n := 0
	for _, r := range s {
		if IsWatermark(r) {
			n++
		}
	}
	return n
}

// removeWith runs a pooled removal transformer over s. On a transform error
// the input is returned unchanged.
func removeWith(pool *sync.Pool, s string) string {
	tr := pool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	pool.Put(tr)
	if err != nil {
		return s
	}
	return out
}
