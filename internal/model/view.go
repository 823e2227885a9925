package model

import "time"

// RoomStatus is the session lifecycle state.
type RoomStatus string

const (
	RoomLobby     RoomStatus = "lobby"
	RoomCountdown RoomStatus = "countdown"
	RoomRunning   RoomStatus = "running"
	RoomFinished  RoomStatus = "finished"
)

// Award is one computed or GM-selected distinction shown with the results.
type Award struct {
	Category   string `json:"category"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	Value      string `json:"value,omitempty"`
}

// Award categories.
const (
	AwardFastestRestore  = "fastestRestore"
	AwardMostRestores    = "mostRestores"
	AwardAlarmWatch      = "alarmWatch"
	AwardMostInspections = "mostInspections"
	AwardBestPlanning    = "bestPlanning"
	AwardBestSwitching   = "bestSwitchingInstruction" // GM-discretionary
	AwardBestComms       = "bestCommunication"        // GM-discretionary
)

// PlayerView is the public projection of a participant.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Role      Role   `json:"role,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	IsGM      bool   `json:"is_gm"`
	Connected bool   `json:"connected"`
}

// TruthView is the field/GM-visible projection of a truth snapshot.
type TruthView struct {
	Status       SwitchStatus `json:"status"`
	Telemetry    Telemetry    `json:"telemetry,omitempty"`
	Lockout      bool         `json:"lockout"`
	Observations string       `json:"observations,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ScadaView is the operator-visible projection of a scada snapshot.
type ScadaView struct {
	Status    SwitchStatus `json:"status"`
	Telemetry Telemetry    `json:"telemetry,omitempty"`
	DBI       bool         `json:"dbi"`
	Lockout   bool         `json:"lockout"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// AssetView is one asset as a given role is allowed to see it. Truth is nil
// unless the viewer is the GM or a field participant located at the asset.
type AssetView struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Kind               AssetKind  `json:"kind"`
	RemoteControllable bool       `json:"remote_controllable"`
	Scada              *ScadaView `json:"scada,omitempty"`
	Truth              *TruthView `json:"truth,omitempty"`
}

// AlarmView is a log entry as projected: detail is withheld from roles
// without access to the detailed log.
type AlarmView struct {
	ID       string        `json:"id"`
	At       time.Time     `json:"at"`
	AtSec    int           `json:"at_sec"`
	Category AlarmCategory `json:"category"`
	Severity Severity      `json:"severity"`
	Summary  string        `json:"summary"`
	Detail   string        `json:"detail,omitempty"`
	AssetID  string        `json:"asset_id,omitempty"`
	Acked    bool          `json:"acked"`
}

// EnergizationView carries the computed reachability sets for diagram
// rendering: which nodes/edges are live and which edges are earthed.
type EnergizationView struct {
	Nodes         []string `json:"nodes"`
	Edges         []string `json:"edges"`
	GroundedEdges []string `json:"grounded_edges"`
}

// RoomView is the role-filtered snapshot pushed to one participant after
// every mutation and every visible tick.
type RoomView struct {
	Code         string     `json:"code"`
	Status       RoomStatus `json:"status"`
	ElapsedSec   int        `json:"elapsed_sec"`
	RemainingSec int        `json:"remaining_sec,omitempty"`
	ScenarioName string     `json:"scenario_name,omitempty"`
	OrgName      string     `json:"org_name,omitempty"`

	You            PlayerView   `json:"you"`
	Players        []PlayerView `json:"players"`
	Teams          []Team       `json:"teams"`
	AvailableRoles []Role       `json:"available_roles,omitempty"`

	// Role-dependent sections; omitted when not visible to the viewer.
	Assets          []AssetView       `json:"assets,omitempty"`
	Energization    *EnergizationView `json:"energization,omitempty"`
	FrequencyHz     float64           `json:"frequency_hz,omitempty"`
	Alarms          []AlarmView       `json:"alarms,omitempty"`
	Comms           []CommsMessage    `json:"comms,omitempty"`
	WorkOrders      []WorkOrder       `json:"work_orders,omitempty"`
	PlannerRequests []PlannerRequest  `json:"planner_requests,omitempty"`
	FieldLocation   FieldLocation     `json:"field_location,omitempty"`

	ResultsVisible bool    `json:"results_visible"`
	Awards         []Award `json:"awards,omitempty"`
}

// TickView is the periodic per-second push.
type TickView struct {
	ElapsedSec   int        `json:"elapsed_sec"`
	RemainingSec int        `json:"remaining_sec,omitempty"`
	Status       RoomStatus `json:"status"`
}

// CreateRoomRequest is the body for POST /rooms.
type CreateRoomRequest struct {
	TeamCount int    `json:"team_count"`
	GMName    string `json:"gm_name,omitempty"`
}

// CreateRoomResponse is the response for POST /rooms.
type CreateRoomResponse struct {
	Code       string `json:"code"`
	GMPlayerID string `json:"gm_player_id"`
	WSURL      string `json:"ws_url"`
}

// RoomInfoResponse is the response for GET /rooms/:code.
type RoomInfoResponse struct {
	Code    string       `json:"code"`
	Status  RoomStatus   `json:"status"`
	Players []PlayerView `json:"players"`
}
