package domain

import "time"

// UpdateLog is an immutable audit trail entry for a work order.
type UpdateLog struct {
	ID          string
	WorkOrderID string
	ActorID     string
	ActorRoles  []string
	Action      string
	FromStatus  *WorkOrderStatus
	ToStatus    WorkOrderStatus
	Reason      *string
	Metadata    map[string]any
	CreatedAt   time.Time
}
