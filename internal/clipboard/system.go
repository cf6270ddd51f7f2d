package clipboard

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

var (
	clipboardReadAll  = clipboard.ReadAll
	clipboardWriteAll = clipboard.WriteAll
)

// SystemBoard is the OS clipboard. Only plain text is reachable, so the change
// count is derived from a hash of the text seen on each poll.
type SystemBoard struct {
	mu       sync.Mutex
	count    int64
	lastHash [sha256.Size]byte
	seen     bool
}

// NewSystemBoard returns a board bound to the OS clipboard.
func NewSystemBoard() *SystemBoard {
	return &SystemBoard{}
}

// Available reports whether a clipboard utility is usable on this system.
func Available() bool {
	return !clipboard.Unsupported
}

// ChangeCount reads the clipboard and bumps the counter when the text differs
// from the previous observation. Read errors leave the counter unchanged.
func (s *SystemBoard) ChangeCount() int64 {
	text, err := clipboardReadAll()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.count
	}
	s.observeLocked(text)
	return s.count
}

func (s *SystemBoard) observeLocked(text string) {
	h := sha256.Sum256([]byte(text))
	if !s.seen || h != s.lastHash {
		if s.seen {
			s.count++
		}
		s.lastHash = h
		s.seen = true
	}
}

// Snapshot returns the plain text as a single representation.
func (s *SystemBoard) Snapshot() (Payload, error) {
	text, err := clipboardReadAll()
	if err != nil {
		return nil, fmt.Errorf("read clipboard: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return PlainText(text), nil
}

// Write replaces the clipboard text. The OS clipboard keeps a single format
// here, so clearOthers has no extra effect.
func (s *SystemBoard) Write(text string, _ bool) error {
	if err := clipboardWriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	s.mu.Lock()
	s.observeLocked(text)
	s.mu.Unlock()
	return nil
}

// Restore writes back the plain text of p, or the best text extracted from it.
func (s *SystemBoard) Restore(p Payload) error {
	text, _, ok := ExtractText(p)
	if !ok {
		return nil
	}
	return s.Write(text, true)
}
