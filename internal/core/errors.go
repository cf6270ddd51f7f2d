package core

import (
	"errors"
	"fmt"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/utils"
)

var (
	// ErrPayloadTooLarge matches every *PayloadTooLargeError.
	ErrPayloadTooLarge = errors.New("clipboard payload too large")
	// ErrExtractionTimeout is returned when reading the clipboard text
	// takes longer than the configured timeout.
	ErrExtractionTimeout = errors.New("clipboard extraction timed out")
	// ErrNoText is returned when the clipboard holds no text representation.
	ErrNoText = errors.New("clipboard holds no text")
	// ErrBusy is returned by TryClean while another invocation holds the board.
	ErrBusy = errors.New("another clean is in progress")
	// ErrClipboardChanged is returned when a background clean finishes
	// after the clipboard was replaced; the stale result is dropped.
	ErrClipboardChanged = errors.New("clipboard changed while cleaning")
)

// PayloadTooLargeError reports a payload rejected by the size gate.
type PayloadTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("clipboard payload is %s, limit is %s",
		utils.ConvertBytesToHumanReadable(e.Size), utils.ConvertBytesToHumanReadable(e.Limit))
}

// Is lets errors.Is(err, ErrPayloadTooLarge) match.
func (e *PayloadTooLargeError) Is(target error) bool {
	return target == ErrPayloadTooLarge
}

// isQuietSkip reports errors that end an invocation without a notification.
func isQuietSkip(err error) bool {
	return errors.Is(err, ErrNoText) || errors.Is(err, clipboard.ErrEmpty) || errors.Is(err, ErrClipboardChanged)
}
