package core

import (
	"time"

	"github.com/clnbrd/clnbrd/internal/rules"
)

// CleanedMsg is broadcast after the pipeline ran on clipboard text.
type CleanedMsg struct {
	Context     string          `json:"context"`
	Source      string          `json:"source"`
	Stages      []rules.StageID `json:"stages"`
	InputRunes  int             `json:"input_runes"`
	OutputRunes int             `json:"output_runes"`
	Written     bool            `json:"written"`
	Pasted      bool            `json:"pasted"`
	Background  bool            `json:"background"`
	Elapsed     time.Duration   `json:"elapsed"`
}

// SkippedMsg is broadcast when an invocation ends before the pipeline.
type SkippedMsg struct {
	Context string `json:"context"`
	Reason  string `json:"reason"`
	Size    int64  `json:"size,omitempty"`
}

// ErrorMsg is broadcast when writing, pasting or restoring fails.
type ErrorMsg struct {
	Context string `json:"context"`
	Err     string `json:"error"`
}

// EventName returns the SSE event name for msg, or "" for unknown types.
func EventName(msg any) string {
	switch msg.(type) {
	case CleanedMsg:
		return "cleaned"
	case SkippedMsg:
		return "skipped"
	case ErrorMsg:
		return "error"
	}
	return ""
}
