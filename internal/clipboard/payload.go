// Package clipboard models clipboard payloads and the board that holds them.
package clipboard

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Format names one clipboard representation.
type Format string

const (
	FormatPlain Format = "text/plain"
	FormatRTF   Format = "text/rtf"
	FormatHTML  Format = "text/html"
	FormatImage Format = "image"
)

var ErrEmpty = errors.New("clipboard is empty")

// Representation is one format of the clipboard contents.
type Representation struct {
	Format Format
	Data   []byte
}

// Payload is every representation the clipboard held at one instant.
type Payload []Representation

// Size sums the byte size of all representations.
func (p Payload) Size() int64 {
	var n int64
	for _, r := range p {
		n += int64(len(r.Data))
	}
	return n
}

// Get returns the data for f.
func (p Payload) Get(f Format) ([]byte, bool) {
	for _, r := range p {
		if r.Format == f {
			return r.Data, true
		}
	}
	return nil, false
}

// HasNonPlain reports whether any representation other than plain text is present.
func (p Payload) HasNonPlain() bool {
	for _, r := range p {
		if r.Format != FormatPlain && len(r.Data) > 0 {
			return true
		}
	}
	return false
}

// Clone deep-copies p.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for i, r := range p {
		out[i] = Representation{Format: r.Format, Data: append([]byte(nil), r.Data...)}
	}
	return out
}

// PlainText returns a payload holding only s as plain text.
func PlainText(s string) Payload {
	return Payload{{Format: FormatPlain, Data: []byte(s)}}
}

// Board is the clipboard capability the cleaner works against.
type Board interface {
	// ChangeCount increases every time the contents change.
	ChangeCount() int64
	// Snapshot captures every representation currently held.
	Snapshot() (Payload, error)
	// Write replaces the plain text. With clearOthers, other formats are dropped.
	Write(text string, clearOthers bool) error
	// Restore puts back a captured payload.
	Restore(p Payload) error
}

func validText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
