package model

import "time"

// WorkOrderStatus: open -> accepted -> completed.
type WorkOrderStatus string

const (
	OrderOpen      WorkOrderStatus = "open"
	OrderAccepted  WorkOrderStatus = "accepted"
	OrderCompleted WorkOrderStatus = "completed"
)

// WorkOrder is a cross-role task handoff: an operator asks the field crew
// to perform a switching action on site.
type WorkOrder struct {
	ID      string          `json:"id"`
	AssetID string          `json:"asset_id"`
	Action  SwitchStatus    `json:"action"`
	Notes   string          `json:"notes,omitempty"`
	Status  WorkOrderStatus `json:"status"`

	CreatedBy   string     `json:"created_by"`
	AcceptedBy  string     `json:"accepted_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PlannerRequestStatus: pending -> accepted|rejected -> completed.
type PlannerRequestStatus string

const (
	RequestPending   PlannerRequestStatus = "pending"
	RequestAccepted  PlannerRequestStatus = "accepted"
	RequestRejected  PlannerRequestStatus = "rejected"
	RequestCompleted PlannerRequestStatus = "completed"
)

// PlannerRequest records a planner-to-operator handoff (e.g. an outage or
// generation request).
type PlannerRequest struct {
	ID     string               `json:"id"`
	Type   string               `json:"type"`
	Notes  string               `json:"notes,omitempty"`
	Status PlannerRequestStatus `json:"status"`

	SubmittedBy string     `json:"submitted_by"`
	HandledBy   string     `json:"handled_by,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	HandledAt   *time.Time `json:"handled_at,omitempty"`
}
