package testutil

import (
	"strings"
	"sync"
	"testing"
)

var seamMu sync.Mutex

// Swap replaces *target for the duration of the test.
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial makes the entire test run under a global lock, preventing interference
// when tests mutate package-level seams
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(func() { seamMu.Unlock() })
}

// LargeText returns n runes of word-like text with a newline every 80 runes.
func LargeText(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		switch {
		case i%80 == 79:
			b.WriteByte('\n')
		case i%6 == 5:
			b.WriteByte(' ')
		default:
			b.WriteByte(byte('a' + i%26))
		}
	}
	return b.String()
}
