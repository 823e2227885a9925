package grid

import (
	"fmt"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
)

// Action is one proposed switching operation.
type Action struct {
	AssetID string
	Target  model.SwitchStatus
}

// Decision is the outcome of interlock validation. When blocked, Reason is
// human-readable and RuleID references the blocking rule.
type Decision struct {
	Allowed bool
	Reason  string
	RuleID  string
}

// Validate scans the rule set in declaration order and returns on the first
// rule that blocks the action (fail-fast, not best-explanation). The asset
// state map is never mutated.
func Validate(states map[string]model.SwitchStatus, rules []model.Rule, action Action) Decision {
	for _, r := range rules {
		switch r.Type {
		case model.RuleRequires:
			if r.AssetID != action.AssetID || r.Target != action.Target {
				continue
			}
			for _, c := range r.Conditions {
				if states[c.AssetID] != c.Status {
					return blocked(r, fmt.Sprintf("requires %s to be %s", c.AssetID, c.Status))
				}
			}
		case model.RuleForbids:
			if r.AssetID != action.AssetID || r.Target != action.Target {
				continue
			}
			for _, c := range r.Conditions {
				if states[c.AssetID] == c.Status {
					return blocked(r, fmt.Sprintf("forbidden while %s is %s", c.AssetID, c.Status))
				}
			}
		case model.RuleMutex:
			// Mutex only ever blocks closing; opening is always allowed.
			if action.Target != model.StatusClosed || !contains(r.Group, action.AssetID) {
				continue
			}
			for _, id := range r.Group {
				if id != action.AssetID && states[id] == model.StatusClosed {
					return blocked(r, fmt.Sprintf("cannot close while %s is closed", id))
				}
			}
		}
	}
	return Decision{Allowed: true}
}

func blocked(r model.Rule, fallback string) Decision {
	reason := r.Message
	if reason == "" {
		reason = fallback
	}
	return Decision{Allowed: false, Reason: reason, RuleID: r.ID}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
