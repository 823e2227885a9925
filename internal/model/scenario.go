package model

// ScenarioEventType is the declarative instruction kind of a timed event.
type ScenarioEventType string

const (
	EventTelemetry     ScenarioEventType = "telemetry"     // override one channel value
	EventRemoteFailure ScenarioEventType = "remoteFailure" // set/clear simulated remote-path failure
	EventFrequency     ScenarioEventType = "frequency"     // apply a grid frequency delta
	EventDBI           ScenarioEventType = "dbi"           // set/clear data-believed-incorrect
	EventAlarm         ScenarioEventType = "alarm"         // generic alarm entry
	EventNote          ScenarioEventType = "note"          // generic note entry
)

// ScenarioEvent is one time-stamped instruction. Events are consumed in
// list order, gated by AtSec; content is expected pre-sorted by AtSec.
type ScenarioEvent struct {
	AtSec int               `json:"at_sec"`
	Type  ScenarioEventType `json:"type"`

	AssetID string  `json:"asset_id,omitempty"`
	Channel Channel `json:"channel,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Set     bool    `json:"set,omitempty"` // remoteFailure / dbi: true sets, false clears
	DeltaHz float64 `json:"delta_hz,omitempty"`

	Severity Severity `json:"severity,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Detail   string   `json:"detail,omitempty"`

	// Optional team point award attached to the event; applied to every team.
	Points int `json:"points,omitempty"`
}

// Edge is one undirected diagram connection between two asset ids.
type Edge struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// ScenarioAsset is the declarative starting state of one asset.
type ScenarioAsset struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name,omitempty"`
	Kind               AssetKind          `json:"kind"`
	InitialStatus      SwitchStatus       `json:"initial_status"`
	RemoteControllable bool               `json:"remote_controllable"`
	RemoteFails        bool               `json:"remote_fails,omitempty"`
	Telemetry          Telemetry          `json:"telemetry,omitempty"`
	Thresholds         map[Channel]Limits `json:"thresholds,omitempty"`
}

// Scenario is one loadable exercise: the diagram, the interlock rule set
// and the timed event list.
type Scenario struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DurationSec int             `json:"duration_sec"`
	Assets      []ScenarioAsset `json:"assets"`
	Edges       []Edge          `json:"edges"`
	Rules       []Rule          `json:"rules,omitempty"`
	Events      []ScenarioEvent `json:"events,omitempty"`
}
