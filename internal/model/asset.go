package model

import "time"

// AssetKind is the physical device type of a diagram node.
type AssetKind string

const (
	AssetSource       AssetKind = "source"
	AssetBreaker      AssetKind = "breaker"
	AssetDisconnector AssetKind = "disconnector"
	AssetEarthSwitch  AssetKind = "earthSwitch"
	AssetTransformer  AssetKind = "transformer"
	AssetBusbar       AssetKind = "busbar"
	AssetLoad         AssetKind = "load"
)

// SwitchStatus is the position of a switching element. Sources reuse it:
// closed means energising, open means offline.
type SwitchStatus string

const (
	StatusOpen   SwitchStatus = "open"
	StatusClosed SwitchStatus = "closed"
)

// Channel names a telemetry channel on an asset.
type Channel string

const (
	ChannelOil         Channel = "oilLevel"
	ChannelGas         Channel = "gasLevel"
	ChannelWindingTemp Channel = "windingTemp"
)

// Telemetry is the continuous measurement set of one snapshot, keyed by channel.
type Telemetry map[Channel]float64

// Clone returns an independent copy; snapshots must never share maps.
func (t Telemetry) Clone() Telemetry {
	if t == nil {
		return nil
	}
	out := make(Telemetry, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Limits is the per-channel threshold object. Level channels (oil, gas) use
// all four bounds; temperature channels use only High/HighHigh.
type Limits struct {
	LockoutLow float64 `json:"lockout_low"`
	Low        float64 `json:"low"`
	High       float64 `json:"high"`
	HighHigh   float64 `json:"high_high"`
}

// TruthState is the ground-truth snapshot of an asset. Only a field
// participant physically at the asset (or the GM) may observe it.
type TruthState struct {
	Status       SwitchStatus `json:"status"`
	Telemetry    Telemetry    `json:"telemetry,omitempty"`
	Lockout      bool         `json:"lockout"`
	Observations string       `json:"observations,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ScadaState is the remotely-reported snapshot; it may be wrong until
// reconciled against a field report (DBI).
type ScadaState struct {
	Status    SwitchStatus `json:"status"`
	Telemetry Telemetry    `json:"telemetry,omitempty"`
	DBI       bool         `json:"dbi"`
	Lockout   bool         `json:"lockout"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Asset is one physical device with its dual truth/scada state.
type Asset struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Kind AssetKind `json:"kind"`

	RemoteControllable bool `json:"remote_controllable"`
	RemoteFails        bool `json:"remote_fails"` // simulated remote-path failure

	Thresholds map[Channel]Limits `json:"thresholds,omitempty"`

	Truth TruthState `json:"truth"`
	Scada ScadaState `json:"scada"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsSwitch reports whether the asset has an operable open/closed position.
func (a *Asset) IsSwitch() bool {
	switch a.Kind {
	case AssetBreaker, AssetDisconnector, AssetEarthSwitch:
		return true
	}
	return false
}

// FieldLocation is a field participant's simulated position.
// Valid values: LocationNone, LocationSCADAPanel, or "asset:<id>".
type FieldLocation string

const (
	LocationNone       FieldLocation = "none"
	LocationSCADAPanel FieldLocation = "scadaPanel"
	locationAssetPref                = "asset:"
)

// AtAsset returns the asset id the location points at, or "".
func (l FieldLocation) AtAsset() string {
	s := string(l)
	if len(s) > len(locationAssetPref) && s[:len(locationAssetPref)] == locationAssetPref {
		return s[len(locationAssetPref):]
	}
	return ""
}

// LocationForAsset builds the "asset:<id>" location value.
func LocationForAsset(assetID string) FieldLocation {
	return FieldLocation(locationAssetPref + assetID)
}
