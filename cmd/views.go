package cmd

import (
	"github.com/clnbrd/clnbrd/internal/rules"
)

// stageView is the listing form of one stage, shared by `rules list --json`
// and GET /rules.
type stageView struct {
	Index       int           `json:"index"`
	ID          rules.StageID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	On          bool          `json:"on"`
	Enabled     bool          `json:"enabled"`
	Mode        rules.Mode    `json:"mode"`
	OnDemand    bool          `json:"on_demand"`
	AutoCopy    bool          `json:"auto_copy"`
}

type rulesView struct {
	Profile           string             `json:"profile,omitempty"`
	EmdashReplacement string             `json:"emdash_replacement"`
	CustomRules       []rules.CustomRule `json:"custom_rules"`
	Stages            []stageView        `json:"stages"`
}

func buildRulesView(snap *rules.Snapshot, profile string) rulesView {
	v := rulesView{
		Profile:           profile,
		EmdashReplacement: snap.Rules.EmdashReplacement,
		CustomRules:       snap.Rules.CustomRules(),
	}
	if v.CustomRules == nil {
		v.CustomRules = []rules.CustomRule{}
	}
	for i, id := range rules.AllStages() {
		info, _ := rules.Info(id)
		cfg := snap.Config(id)
		v.Stages = append(v.Stages, stageView{
			Index:       i + 1,
			ID:          id,
			Name:        info.Name,
			Description: info.Description,
			On:          snap.Rules.Flag(id),
			Enabled:     cfg.Enabled,
			Mode:        cfg.Mode,
			OnDemand:    snap.Applies(id, rules.OnDemand),
			AutoCopy:    snap.Applies(id, rules.AutoCopy),
		})
	}
	return v
}

// activeProfileName returns the name of the active profile, or "".
func activeProfileName() string {
	if GlobalProfiles == nil {
		return ""
	}
	p, err := GlobalProfiles.Find(GlobalProfiles.ActiveID())
	if err != nil {
		return ""
	}
	return p.Name
}
