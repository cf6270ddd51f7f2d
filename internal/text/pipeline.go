// Package text implements the cleaning pipeline: fourteen pure string stages
// run in a fixed order, gated per invocation by a rules snapshot.
package text

import (
	"github.com/clnbrd/clnbrd/internal/rules"
)

// maxSettlePasses bounds the re-application of built-in stages.
const maxSettlePasses = 32

// Result is the outcome of one pipeline run.
type Result struct {
	Text string
	// Fired lists the stages active for the context, in pipeline order.
	Fired []rules.StageID
	// Changed lists the stages that modified the text at least once.
	Changed []rules.StageID
	// Passes counts ordered passes over the stages, the first one included.
	Passes int
}

// Run cleans s with the stages snap enables for ctx. After the ordered pass
// the built-in stages are re-applied until the text stops changing, so the
// output is a fixed point of them. Custom rules run once.
func Run(snap *rules.Snapshot, ctx rules.Context, s string) Result {
	active := snap.ActiveStages(ctx)
	res := Result{Fired: active}
	if len(active) == 0 || s == "" {
		res.Text = s
		return res
	}

	changed := make(map[rules.StageID]bool, len(active))
	apply := func(id rules.StageID) {
		out := stageFuncs[id](snap.Rules, s)
		if out != s {
			changed[id] = true
			s = out
		}
	}

	for _, id := range active {
		apply(id)
	}
	res.Passes = 1

	for res.Passes < maxSettlePasses {
		prev := s
		for _, id := range active {
			if id == rules.StageCustomRules {
				continue
			}
			apply(id)
		}
		res.Passes++
		if s == prev {
			break
		}
	}

	res.Text = s
	for _, id := range active {
		if changed[id] {
			res.Changed = append(res.Changed, id)
		}
	}
	return res
}

// Clean is Run returning only the text.
func Clean(snap *rules.Snapshot, ctx rules.Context, s string) string {
	return Run(snap, ctx, s).Text
}

// Stage runs a single stage regardless of configuration. Unknown ids return s.
func Stage(id rules.StageID, rs rules.RuleSet, s string) string {
	fn, ok := stageFuncs[id]
	if !ok {
		return s
	}
	return fn(rs, s)
}
