package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/core"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/urlclean"
)

// stageNames maps stage ids to their display names.
func stageNames(ids []rules.StageID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if info, ok := rules.Info(id); ok {
			names = append(names, info.Name)
		} else {
			names = append(names, string(id))
		}
	}
	return names
}

// printResult writes a one-line summary of a clipboard clean.
func printResult(w io.Writer, res *core.Result) {
	switch {
	case res.Phase == core.PhaseSkipped:
		fmt.Fprintf(w, "Nothing to do: no rules are active for %s cleaning.\n", res.Context)
	case res.Phase == core.PhasePastedAndRestored:
		fmt.Fprintf(w, "Pasted %d characters and restored the clipboard.\n", utf8.RuneCountInString(res.Text))
	case len(res.Changed) == 0 && res.Written:
		fmt.Fprintln(w, "Clipboard was already clean (formatting removed).")
	case len(res.Changed) == 0:
		fmt.Fprintln(w, "Clipboard was already clean.")
	default:
		fmt.Fprintf(w, "Cleaned (%d characters): %s\n",
			utf8.RuneCountInString(res.Text), strings.Join(stageNames(res.Changed), ", "))
	}
}

// printExplain lists every active stage and whether it changed the text.
func printExplain(w io.Writer, res *core.Result) {
	changed := make(map[rules.StageID]bool, len(res.Changed))
	for _, id := range res.Changed {
		changed[id] = true
	}
	fmt.Fprintf(w, "context: %s, passes: %d", res.Context, res.Passes)
	if res.Background {
		fmt.Fprint(w, ", background")
	}
	fmt.Fprintln(w)
	for _, id := range res.Fired {
		mark := " "
		if changed[id] {
			mark = "*"
		}
		info, _ := rules.Info(id)
		fmt.Fprintf(w, "  %s %-36s %s\n", mark, id, info.Name)
	}
}

// printReport writes a URL clean report.
func printReport(w io.Writer, rep urlclean.Report, explain bool) {
	fmt.Fprintln(w, rep.Output)
	if !explain {
		return
	}
	if rep.Domain != "" {
		fmt.Fprintf(w, "  rule: %s\n", rep.Domain)
	}
	if len(rep.Removed) > 0 {
		fmt.Fprintf(w, "  removed: %s\n", strings.Join(rep.Removed, ", "))
	}
	if rep.Path {
		fmt.Fprintln(w, "  path truncated")
	}
	if !rep.Changed() {
		fmt.Fprintln(w, "  unchanged")
	}
}

// quietSkip reports clean errors that deserve a message but not a failure
// exit status.
func quietSkip(err error) bool {
	return errors.Is(err, core.ErrNoText) || errors.Is(err, clipboard.ErrEmpty)
}
