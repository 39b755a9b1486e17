package dto

import (
	"time"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// ReportWorkOrderRequest payload.
type ReportWorkOrderRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Location    string                   `json:"location"`
	AssetID     *string                  `json:"asset_id"`
	Priority    domain.WorkOrderPriority `json:"priority"`
	Urgency     domain.WorkOrderUrgency  `json:"urgency"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	To     string `json:"to"`
	Reason string `json:"reason"`
	TeamID string `json:"team_id"`
}

// ReassignRequest payload.
type ReassignRequest struct {
	TeamID string `json:"team_id"`
	Reason string `json:"reason"`
}

// WorkOrderSummary response.
type WorkOrderSummary struct {
	ID                string                   `json:"id"`
	Code              string                   `json:"code"`
	Title             string                   `json:"title"`
	Location          string                   `json:"location"`
	Priority          domain.WorkOrderPriority `json:"priority"`
	Urgency           domain.WorkOrderUrgency  `json:"urgency"`
	Status            domain.WorkOrderStatus   `json:"status"`
	StatusLabel       string                   `json:"status_label"`
	StatusColor       string                   `json:"status_color"`
	AssignedTeam      *string                  `json:"assigned_team"`
	ReportedBy        string                   `json:"reported_by"`
	ReportedAt        time.Time                `json:"reported_at"`
	ReassignmentCount int                      `json:"reassignment_count"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// WorkOrderDetail response carrying the full record and the caller's workflow state.
type WorkOrderDetail struct {
	WorkOrderSummary
	Description         string             `json:"description"`
	AssetID             *string            `json:"asset_id"`
	FastTracked         bool               `json:"fast_tracked"`
	PendingClosureSince *time.Time         `json:"pending_closure_since"`
	Rejection           *RejectionResponse `json:"rejection,omitempty"`
	ReassignmentReason  *string            `json:"reassignment_reason,omitempty"`
	Stages              []StageResponse    `json:"stages"`
	Workflow            *WorkflowResponse  `json:"workflow,omitempty"`
}

// RejectionResponse describes an active rejection.
type RejectionResponse struct {
	Stage  domain.RejectionStage `json:"stage"`
	By     *string               `json:"by"`
	At     time.Time             `json:"at"`
	Reason *string               `json:"reason"`
}

// StageResponse is one completed lifecycle stage.
type StageResponse struct {
	Stage   domain.Stage        `json:"stage"`
	ActorID *string             `json:"actor_id"`
	At      time.Time           `json:"at"`
	Outcome domain.StageOutcome `json:"outcome"`
}

// WorkflowResponse lists what the caller may do next.
type WorkflowResponse struct {
	Terminal     bool               `json:"terminal"`
	AwaitingRole string             `json:"awaiting_role,omitempty"`
	Actions      []ActionResponse   `json:"actions"`
	AutoClose    *AutoCloseResponse `json:"auto_close,omitempty"`
}

// ActionResponse is one available transition.
type ActionResponse struct {
	Action      string                 `json:"action"`
	To          domain.WorkOrderStatus `json:"to"`
	NeedsTeam   bool                   `json:"needs_team"`
	NeedsReason bool                   `json:"needs_reason"`
}

// AutoCloseResponse is the reporter closure countdown.
type AutoCloseResponse struct {
	Deadline        time.Time `json:"deadline"`
	ShouldAutoClose bool      `json:"should_auto_close"`
	HoursRemaining  int       `json:"hours_remaining"`
}

// UpdateLogResponse is one audit entry.
type UpdateLogResponse struct {
	ID         string                  `json:"id"`
	ActorID    string                  `json:"actor_id"`
	ActorRoles []string                `json:"actor_roles"`
	Action     string                  `json:"action"`
	FromStatus *domain.WorkOrderStatus `json:"from_status"`
	ToStatus   domain.WorkOrderStatus  `json:"to_status"`
	Reason     *string                 `json:"reason"`
	Metadata   map[string]any          `json:"metadata,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// StatusResponse is one row of the localized status table.
type StatusResponse struct {
	Status   domain.WorkOrderStatus `json:"status"`
	Label    string                 `json:"label"`
	Color    string                 `json:"color"`
	Terminal bool                   `json:"terminal"`
}
