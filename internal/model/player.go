package model

import "time"

// Role is a participant's function in the exercise.
type Role string

const (
	RoleGM       Role = "gm"
	RoleOperator Role = "operator"
	RoleField    Role = "field"
	RolePlanner  Role = "planner"
	RoleNone     Role = ""
)

// PlayerStats are per-player counters feeding award computation.
type PlayerStats struct {
	AlarmsAcked     int `json:"alarms_acked"`
	Restores        int `json:"restores"`
	Inspections     int `json:"inspections"`
	PlannerRequests int `json:"planner_requests"`
	FirstRestoreSec int `json:"first_restore_sec"` // -1 until the first restore
}

// Player is one participant. A player belongs to at most one room;
// exactly one player per room holds the GM role at any time.
type Player struct {
	ID        string        `json:"id"` // connection id
	Name      string        `json:"name,omitempty"`
	Role      Role          `json:"role,omitempty"`
	TeamID    string        `json:"team_id,omitempty"`
	IsGM      bool          `json:"is_gm"`
	Connected bool          `json:"connected"`
	Location  FieldLocation `json:"location,omitempty"` // field role only
	Stats     PlayerStats   `json:"stats"`
	JoinedAt  time.Time     `json:"joined_at"`
}

// Team groups players for scoring. The team set is rebuilt wholesale when
// the GM changes the team count.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}
