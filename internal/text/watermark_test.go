package text

import "testing"

func TestStripWatermarks(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		count int
	}{
		{"clean", "hello", "hello", 0},
		{"zero width trio", "a\u200Bb\u200Cc\u200Dd", "abcd", 3},
		{"bom and joiners", "\uFEFFx\u2060y\u2064", "xy", 3},
		{"variation selectors", "a\uFE00b\uFE0F", "ab", 2},
		{"mongolian cgj soft hyphen", "a\u180Eb\u034Fc\u00ADd", "abcd", 3},
		{"neighbours kept", "\u200A\u2065x", "\u200A\u2065x", 0},
		{"empty", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripWatermarks(tt.in)
			if got != tt.want {
				t.Errorf("StripWatermarks(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := StripWatermarks(got); again != got {
				t.Errorf("second strip changed %q to %q", got, again)
			}
			if n := CountWatermarks(tt.in); n != tt.count {
				t.Errorf("CountWatermarks(%q) = %d, want %d", tt.in, n, tt.count)
			}
			if ContainsWatermarks(tt.in) != (tt.count > 0) {
				t.Errorf("ContainsWatermarks(%q) = %v", tt.in, !(tt.count > 0))
			}
		})
	}
}

func TestIsEmoji(t *testing.T) {
	for _, r := range []rune{'😀', '🚀', '☀', '✅', '⭐', '⭕', '\U0001F3FD', '\u20E3', '\uFE0F',
		'©', '®', '‼', '⁉', '™', 'ℹ', '↔', '↩', '⌨', '⏏', 'Ⓜ', '▪', '▶', '◀', '◻', '⤴', '〰', '㊙'} {
		if !IsEmoji(r) {
			t.Errorf("IsEmoji(%U) = false", r)
		}
	}
	for _, r := range []rune{'a', '0', '9', '#', '*', '→', '↚', '▷', '€', 'é', '中', '\uFE0E'} {
		if IsEmoji(r) {
			t.Errorf("IsEmoji(%U) = true", r)
		}
	}
}
