package core

import (
	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/urlclean"
)

// Wire types shared by `clnbrd serve` and RemoteCleanService.

// CleanTextRequest asks the server to clean text without touching the clipboard.
type CleanTextRequest struct {
	Text    string `json:"text" validate:"max=10485760"`
	Context string `json:"context,omitempty" validate:"omitempty,oneof=on-demand on_demand auto auto-copy auto_copy"`
}

// ClipboardRequest asks the server to clean its clipboard.
type ClipboardRequest struct {
	Context string `json:"context,omitempty" validate:"omitempty,oneof=on-demand on_demand auto auto-copy auto_copy"`
}

// URLRequest asks the server to detrack URLs.
type URLRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,max=1000,dive,required,max=8192"`
}

// URLResponse carries one report per requested URL, in request order.
type URLResponse struct {
	Results []urlclean.Report `json:"results"`
}

// CleanResponse is the wire form of Result.
type CleanResponse struct {
	Text       string          `json:"text"`
	Context    string          `json:"context"`
	Phase      string          `json:"phase"`
	Source     string          `json:"source,omitempty"`
	Size       int64           `json:"size,omitempty"`
	Fired      []rules.StageID `json:"fired"`
	Changed    []rules.StageID `json:"changed"`
	Passes     int             `json:"passes"`
	Background bool            `json:"background"`
	Written    bool            `json:"written"`
}

// Response converts r to its wire form.
func (r *Result) Response() CleanResponse {
	return CleanResponse{
		Text:       r.Text,
		Context:    r.Context.String(),
		Phase:      r.Phase.String(),
		Source:     string(r.Source),
		Size:       r.Size,
		Fired:      r.Fired,
		Changed:    r.Changed,
		Passes:     r.Passes,
		Background: r.Background,
		Written:    r.Written,
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) Phase {
	for p := PhaseIdle; p <= PhasePastedAndRestored; p++ {
		if p.String() == s {
			return p
		}
	}
	return PhaseIdle
}

// Result converts the wire form back. Input is not transmitted.
func (c CleanResponse) Result() *Result {
	rctx, _ := rules.ParseContext(c.Context)
	return &Result{
		Context:    rctx,
		Phase:      ParsePhase(c.Phase),
		Source:     clipboard.Format(c.Source),
		Size:       c.Size,
		Text:       c.Text,
		Fired:      c.Fired,
		Changed:    c.Changed,
		Passes:     c.Passes,
		Background: c.Background,
		Written:    c.Written,
	}
}
