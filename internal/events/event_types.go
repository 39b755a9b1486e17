package events

import (
	"time"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventWorkOrderReported     EventType = "work_order.reported"
	EventWorkOrderTransitioned EventType = "work_order.transitioned"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
}

// ActorFrom snapshots a workflow actor for an event.
func ActorFrom(a domain.Actor) Actor {
	return Actor{UserID: a.UserID, Roles: a.Roles.Strings()}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	WorkOrderID string    `json:"work_order_id"`
	Actor       Actor     `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// WorkOrderReportedPayload payload.
type WorkOrderReportedPayload struct {
	Code       string                   `json:"code"`
	Title      string                   `json:"title"`
	Location   string                   `json:"location,omitempty"`
	Priority   domain.WorkOrderPriority `json:"priority"`
	Urgency    domain.WorkOrderUrgency  `json:"urgency"`
	ReportedBy string                   `json:"reported_by"`
}

// WorkOrderTransitionedPayload payload.
type WorkOrderTransitionedPayload struct {
	Code         string                 `json:"code"`
	Title        string                 `json:"title"`
	From         domain.WorkOrderStatus `json:"from"`
	To           domain.WorkOrderStatus `json:"to"`
	Action       string                 `json:"action"`
	Reason       string                 `json:"reason,omitempty"`
	AssignedTeam *string                `json:"assigned_team,omitempty"`
	ReportedBy   string                 `json:"reported_by"`
}
