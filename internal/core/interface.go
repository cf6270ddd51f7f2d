package core

import (
	"context"

	"github.com/clnbrd/clnbrd/internal/rules"
)

// CleanService defines the interface for cleaning the clipboard.
// This abstraction allows the CLI to switch between a local embedded service
// and a connection to a running `clnbrd serve`.
type CleanService interface {
	// Clean cleans the clipboard text in place for the given context.
	Clean(ctx context.Context, rctx rules.Context) (*Result, error)

	// CleanAndPaste writes cleaned text, pastes it into the frontmost
	// application and restores the original clipboard.
	CleanAndPaste(ctx context.Context) (*Result, error)

	// CleanText runs the pipeline over text without touching the clipboard.
	CleanText(ctx context.Context, rctx rules.Context, text string) (*Result, error)

	// StreamEvents returns a channel that receives clean events and a
	// function that detaches it.
	StreamEvents(ctx context.Context) (<-chan any, func(), error)

	// Shutdown handles graceful shutdown of the service
	Shutdown() error
}
