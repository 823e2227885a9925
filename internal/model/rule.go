package model

// RuleType is the interlock rule kind.
type RuleType string

const (
	RuleRequires RuleType = "requires" // action permitted only if peers are in the named states
	RuleForbids  RuleType = "forbids"  // action blocked if any peer is in the named state
	RuleMutex    RuleType = "mutex"    // closing any set member is blocked while another is closed
)

// RuleCondition names a peer asset and the state it is checked against.
type RuleCondition struct {
	AssetID string       `json:"asset_id"`
	Status  SwitchStatus `json:"status"`
}

// Rule is one interlock declaration. Rules are evaluated in declaration
// order and the first blocking rule wins.
type Rule struct {
	ID   string   `json:"id"`
	Type RuleType `json:"type"`

	// requires/forbids: the guarded action.
	AssetID string       `json:"asset_id,omitempty"`
	Target  SwitchStatus `json:"target,omitempty"`

	// requires/forbids peers.
	Conditions []RuleCondition `json:"conditions,omitempty"`

	// mutex member set.
	Group []string `json:"group,omitempty"`

	// Human-readable reason reported when the rule blocks.
	Message string `json:"message,omitempty"`
}
