package testutil

import (
	"errors"
	"sync"
	"time"

	"github.com/clnbrd/clnbrd/internal/clipboard"
)

// FakeBoard is an in-memory clipboard.Board.
type FakeBoard struct {
	mu      sync.Mutex
	payload clipboard.Payload
	count   int64

	// SnapshotDelay stalls Snapshot to simulate a slow clipboard.
	SnapshotDelay time.Duration
	SnapshotErr   error
	WriteErr      error
	RestoreErr    error

	writes   []string
	restores []clipboard.Payload
	events   []string
}

// NewFakeBoard returns a board holding p.
func NewFakeBoard(p clipboard.Payload) *FakeBoard {
	return &FakeBoard{payload: p.Clone()}
}

// Copy simulates a user copy: the contents change and the count moves.
func (b *FakeBoard) Copy(p clipboard.Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payload = p.Clone()
	b.count++
	b.events = append(b.events, "copy")
}

func (b *FakeBoard) ChangeCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *FakeBoard) Snapshot() (clipboard.Payload, error) {
	b.mu.Lock()
	delay, err := b.SnapshotDelay, b.SnapshotErr
	b.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, "snapshot")
	return b.payload.Clone(), nil
}

func (b *FakeBoard) Write(text string, clearOthers bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	if clearOthers {
		b.payload = clipboard.PlainText(text)
	} else {
		kept := clipboard.Payload{{Format: clipboard.FormatPlain, Data: []byte(text)}}
		for _, r := range b.payload {
			if r.Format != clipboard.FormatPlain {
				kept = append(kept, r)
			}
		}
		b.payload = kept
	}
	b.count++
	b.writes = append(b.writes, text)
	b.events = append(b.events, "write")
	return nil
}

func (b *FakeBoard) Restore(p clipboard.Payload) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.RestoreErr != nil {
		return b.RestoreErr
	}
	b.payload = p.Clone()
	b.count++
	b.restores = append(b.restores, p.Clone())
	b.events = append(b.events, "restore")
	return nil
}

// Payload returns the current contents.
func (b *FakeBoard) Payload() clipboard.Payload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.payload.Clone()
}

// Text returns the current plain text.
func (b *FakeBoard) Text() string {
	text, _, _ := clipboard.ExtractText(b.Payload())
	return text
}

// Writes returns every text written so far.
func (b *FakeBoard) Writes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.writes...)
}

// Restores returns every payload restored so far.
func (b *FakeBoard) Restores() []clipboard.Payload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]clipboard.Payload(nil), b.restores...)
}

// Events returns the ordered log of board operations.
func (b *FakeBoard) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

// Mark appends a caller-defined entry to the event log.
func (b *FakeBoard) Mark(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

// ErrFake is a generic failure for error-path tests.
var ErrFake = errors.New("fake failure")
