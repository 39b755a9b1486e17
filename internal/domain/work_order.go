package domain

import (
	"fmt"
	"strings"
	"time"
)

// WorkOrderStatus enumerates lifecycle states for work orders.
type WorkOrderStatus string

const (
	StatusPending                   WorkOrderStatus = "pending"
	StatusAssigned                  WorkOrderStatus = "assigned"
	StatusInProgress                WorkOrderStatus = "in_progress"
	StatusPendingSupervisorApproval WorkOrderStatus = "pending_supervisor_approval"
	StatusPendingEngineerReview     WorkOrderStatus = "pending_engineer_review"
	StatusPendingReporterClosure    WorkOrderStatus = "pending_reporter_closure"
	StatusCompleted                 WorkOrderStatus = "completed"
	StatusCancelled                 WorkOrderStatus = "cancelled"
	StatusAutoClosed                WorkOrderStatus = "auto_closed"
	StatusRejectedByTechnician      WorkOrderStatus = "rejected_by_technician"
	StatusRejectedBySupervisor      WorkOrderStatus = "rejected_by_supervisor"
	StatusRejectedByEngineer        WorkOrderStatus = "rejected_by_engineer"
	StatusNeedsRedirection          WorkOrderStatus = "needs_redirection"
	StatusCustomerApproved          WorkOrderStatus = "customer_approved"
	StatusCustomerRejected          WorkOrderStatus = "customer_rejected"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []WorkOrderStatus{
	StatusPending,
	StatusAssigned,
	StatusInProgress,
	StatusPendingSupervisorApproval,
	StatusPendingEngineerReview,
	StatusPendingReporterClosure,
	StatusCustomerApproved,
	StatusCompleted,
	StatusAutoClosed,
	StatusCancelled,
	StatusRejectedByTechnician,
	StatusRejectedBySupervisor,
	StatusRejectedByEngineer,
	StatusCustomerRejected,
	StatusNeedsRedirection,
}

// Valid reports whether s belongs to the closed status enumeration.
func (s WorkOrderStatus) Valid() bool {
	for _, candidate := range AllStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are permitted from s.
func (s WorkOrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusAutoClosed
}

// Rejected reports whether s is one of the gate rejection states.
func (s WorkOrderStatus) Rejected() bool {
	switch s {
	case StatusRejectedByTechnician, StatusRejectedBySupervisor, StatusRejectedByEngineer, StatusCustomerRejected:
		return true
	}
	return false
}

// ParseStatus validates an external status value.
func ParseStatus(raw string) (WorkOrderStatus, error) {
	status := WorkOrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown work order status %q", raw)
	}
	return status, nil
}

// WorkOrderPriority classifies the work order.
type WorkOrderPriority string

const (
	PriorityLow      WorkOrderPriority = "low"
	PriorityMedium   WorkOrderPriority = "medium"
	PriorityHigh     WorkOrderPriority = "high"
	PriorityCritical WorkOrderPriority = "critical"
)

// WorkOrderUrgency classifies how quickly the reporter needs a response.
type WorkOrderUrgency string

const (
	UrgencyNormal    WorkOrderUrgency = "normal"
	UrgencyUrgent    WorkOrderUrgency = "urgent"
	UrgencyEmergency WorkOrderUrgency = "emergency"
)

// RejectionStage names the gate at which a work order was rejected.
type RejectionStage string

const (
	RejectionStageTechnician RejectionStage = "technician"
	RejectionStageSupervisor RejectionStage = "supervisor"
	RejectionStageEngineer   RejectionStage = "engineer"
	RejectionStageReporter   RejectionStage = "reporter"
)

// WorkOrder is the aggregate for maintenance requests.
type WorkOrder struct {
	ID          string
	Code        string
	Title       string
	Description string
	Location    string
	AssetID     *string
	Priority    WorkOrderPriority
	Urgency     WorkOrderUrgency
	Status      WorkOrderStatus

	ReportedBy string
	ReportedAt time.Time

	AssignedTeam *string
	AssignedAt   *time.Time
	AssignedBy   *string

	TechnicianCompletedAt *time.Time
	TechnicianCompletedBy *string

	SupervisorApprovedAt *time.Time
	SupervisorApprovedBy *string

	EngineerApprovedAt *time.Time
	EngineerApprovedBy *string

	CustomerReviewedAt *time.Time
	CustomerReviewedBy *string
	AutoClosedAt       *time.Time

	MaintenanceManagerApprovedAt *time.Time
	MaintenanceManagerApprovedBy *string

	CancelledAt *time.Time
	CancelledBy *string

	RejectedAt      *time.Time
	RejectedBy      *string
	RejectionStage  *RejectionStage
	RejectionReason *string

	PendingClosureSince *time.Time

	ReassignmentCount  int
	LastReassignedAt   *time.Time
	LastReassignedBy   *string
	ReassignmentReason *string

	FastTracked bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsReportedBy reports whether userID submitted the work order.
func (w *WorkOrder) IsReportedBy(userID string) bool {
	return userID != "" && w.ReportedBy == userID
}

// AssignedTo reports whether the work order is currently assigned to teamID.
func (w *WorkOrder) AssignedTo(teamID string) bool {
	return w.AssignedTeam != nil && *w.AssignedTeam == teamID
}

// Clone returns a deep copy so callers can mutate without aliasing pointer fields.
func (w WorkOrder) Clone() WorkOrder {
	out := w
	out.AssetID = cloneString(w.AssetID)
	out.AssignedTeam = cloneString(w.AssignedTeam)
	out.AssignedAt = cloneTime(w.AssignedAt)
	out.AssignedBy = cloneString(w.AssignedBy)
	out.TechnicianCompletedAt = cloneTime(w.TechnicianCompletedAt)
	out.TechnicianCompletedBy = cloneString(w.TechnicianCompletedBy)
	out.SupervisorApprovedAt = cloneTime(w.SupervisorApprovedAt)
	out.SupervisorApprovedBy = cloneString(w.SupervisorApprovedBy)
	out.EngineerApprovedAt = cloneTime(w.EngineerApprovedAt)
	out.EngineerApprovedBy = cloneString(w.EngineerApprovedBy)
	out.CustomerReviewedAt = cloneTime(w.CustomerReviewedAt)
	out.CustomerReviewedBy = cloneString(w.CustomerReviewedBy)
	out.AutoClosedAt = cloneTime(w.AutoClosedAt)
	out.MaintenanceManagerApprovedAt = cloneTime(w.MaintenanceManagerApprovedAt)
	out.MaintenanceManagerApprovedBy = cloneString(w.MaintenanceManagerApprovedBy)
	out.CancelledAt = cloneTime(w.CancelledAt)
	out.CancelledBy = cloneString(w.CancelledBy)
	out.RejectedAt = cloneTime(w.RejectedAt)
	out.RejectedBy = cloneString(w.RejectedBy)
	if w.RejectionStage != nil {
		stage := *w.RejectionStage
		out.RejectionStage = &stage
	}
	out.RejectionReason = cloneString(w.RejectionReason)
	out.PendingClosureSince = cloneTime(w.PendingClosureSince)
	out.LastReassignedAt = cloneTime(w.LastReassignedAt)
	out.LastReassignedBy = cloneString(w.LastReassignedBy)
	out.ReassignmentReason = cloneString(w.ReassignmentReason)
	return out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
