package model

import "time"

// AlarmCategory classifies a log entry.
type AlarmCategory string

const (
	CategoryAlarm AlarmCategory = "alarm"
	CategoryFault AlarmCategory = "fault"
	CategoryNote  AlarmCategory = "note"
)

// Severity of a log entry.
type Severity string

const (
	SeverityLow  Severity = "low"
	SeverityMed  Severity = "med"
	SeverityHigh Severity = "high"
)

// AlarmEvent is an immutable, append-only log entry. The room keeps only
// the most recent entries (bounded ring).
type AlarmEvent struct {
	ID       string        `json:"id"`
	At       time.Time     `json:"at"`
	AtSec    int           `json:"at_sec"` // elapsed game seconds at append time
	Category AlarmCategory `json:"category"`
	Severity Severity      `json:"severity"`
	Summary  string        `json:"summary"`
	Detail   string        `json:"detail,omitempty"`
	AssetID  string        `json:"asset_id,omitempty"`
}

// CommsMessage is a free-text entry in the room comms log.
type CommsMessage struct {
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
	Kind     string    `json:"kind"` // radio, phone, note
	Text     string    `json:"text"`
	FromID   string    `json:"from_id"`
	FromName string    `json:"from_name,omitempty"`
	FromRole Role      `json:"from_role,omitempty"`
}
