package model

import "encoding/json"

// Command is one inbound WebSocket frame: {"cmd": "...", "data": {...}}.
// The actor identity is implicit in the connection, never in the payload.
type Command struct {
	Cmd  string          `json:"cmd"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound command names.
const (
	CmdSetDisplayName       = "set-display-name"
	CmdSetRole              = "set-role"
	CmdStartGame            = "start-game"
	CmdSetTeams             = "set-teams"
	CmdMovePlayerTeam       = "move-player-team"
	CmdSetTeamNames         = "set-team-names"
	CmdSetAvailableRoles    = "set-available-roles"
	CmdLoadScenario         = "load-scenario"
	CmdInjectEvent          = "inject-event"
	CmdRemoteSwitch         = "remote-switch"
	CmdCreateWorkOrder      = "create-work-order"
	CmdAcceptWorkOrder      = "accept-work-order"
	CmdCompleteWorkOrder    = "complete-work-order"
	CmdSetFieldLocation     = "set-field-location"
	CmdReportAsset          = "report-asset"
	CmdPerformMaintenance   = "perform-maintenance"
	CmdResetLockout         = "reset-lockout"
	CmdConfirmAsset         = "confirm-asset-from-report"
	CmdSubmitPlannerRequest = "submit-planner-request"
	CmdHandlePlannerRequest = "handle-planner-request"
	CmdConnectGenerator     = "connect-generator"
	CmdPostComms            = "post-comms-message"
	CmdGrantPoints          = "grant-points"
	CmdSetResultsVisibility = "set-results-visibility"
	CmdSetAutoAnnounce      = "set-auto-announce"
	CmdSetGMAwards          = "set-gm-awards"
	CmdAckAlarm             = "ack-alarm"
)

// Payloads, one struct per command that carries data.

type SetDisplayNamePayload struct {
	Name string `json:"name"`
}

type SetRolePayload struct {
	Role           Role   `json:"role"`
	TargetPlayerID string `json:"target_player_id,omitempty"` // GM only
}

type SetTeamsPayload struct {
	TeamCount int `json:"team_count"`
}

type MovePlayerTeamPayload struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
}

type SetTeamNamesPayload struct {
	Names   []string `json:"names"`
	OrgName string   `json:"org_name,omitempty"`
}

type SetAvailableRolesPayload struct {
	Roles []Role `json:"roles"`
}

type LoadScenarioPayload struct {
	Scenario Scenario `json:"scenario"`
}

type InjectEventPayload struct {
	Type    string `json:"type"` // alarm or note
	Message string `json:"message"`
}

type RemoteSwitchPayload struct {
	AssetID string       `json:"asset_id"`
	Action  SwitchStatus `json:"action"`
}

type CreateWorkOrderPayload struct {
	AssetID string       `json:"asset_id"`
	Action  SwitchStatus `json:"action"`
	Notes   string       `json:"notes,omitempty"`
}

type WorkOrderIDPayload struct {
	ID string `json:"id"`
}

type SetFieldLocationPayload struct {
	Location FieldLocation `json:"location"`
}

type AssetIDPayload struct {
	AssetID string `json:"asset_id"`
}

type ConfirmAssetPayload struct {
	AssetID            string       `json:"asset_id"`
	ConfirmedStatus    SwitchStatus `json:"confirmed_status"`
	ConfirmedTelemetry Telemetry    `json:"confirmed_telemetry,omitempty"`
}

type SubmitPlannerRequestPayload struct {
	Type  string `json:"type"`
	Notes string `json:"notes,omitempty"`
}

type HandlePlannerRequestPayload struct {
	ID     string               `json:"id"`
	Status PlannerRequestStatus `json:"status"`
}

type ConnectGeneratorPayload struct {
	AmountHz float64 `json:"amount_hz,omitempty"`
}

type PostCommsPayload struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type GrantPointsPayload struct {
	TeamID string `json:"team_id"`
	Points int    `json:"points"`
	Reason string `json:"reason,omitempty"`
}

type SetResultsVisibilityPayload struct {
	Visible bool `json:"visible"`
}

type SetAutoAnnouncePayload struct {
	Enabled bool `json:"enabled"`
}

type SetGMAwardsPayload struct {
	BestSwitchingInstruction string `json:"best_switching_instruction,omitempty"` // player id
	BestCommunication        string `json:"best_communication,omitempty"`         // player id
}

type AckAlarmPayload struct {
	AlarmID string `json:"alarm_id"`
}
