package domain

import "time"

// Stage identifies one step of the work order lifecycle.
type Stage string

const (
	StageReported                   Stage = "reported"
	StageAssigned                   Stage = "assigned"
	StageTechnicianCompleted        Stage = "technician_completed"
	StageSupervisorApproved         Stage = "supervisor_approved"
	StageEngineerApproved           Stage = "engineer_approved"
	StageCustomerReviewed           Stage = "customer_reviewed"
	StageAutoClosed                 Stage = "auto_closed"
	StageMaintenanceManagerApproved Stage = "maintenance_manager_approved"
)

// StageOutcome records how a stage ended.
type StageOutcome string

const (
	OutcomeDone     StageOutcome = "done"
	OutcomeRejected StageOutcome = "rejected"
)

// StageCompletion is one entry of the ordered stage history of a work order.
type StageCompletion struct {
	Stage   Stage
	ActorID *string
	At      time.Time
	Outcome StageOutcome
}

// Stages derives the ordered stage completions from the flat timestamp columns.
// Stages that have not happened yet are omitted; an active rejection is appended last.
func (w *WorkOrder) Stages() []StageCompletion {
	out := []StageCompletion{{
		Stage:   StageReported,
		ActorID: stringPtrOrNil(w.ReportedBy),
		At:      w.ReportedAt,
		Outcome: OutcomeDone,
	}}
	add := func(stage Stage, at *time.Time, by *string) {
		if at == nil {
			return
		}
		out = append(out, StageCompletion{Stage: stage, ActorID: by, At: *at, Outcome: OutcomeDone})
	}
	add(StageAssigned, w.AssignedAt, w.AssignedBy)
	add(StageTechnicianCompleted, w.TechnicianCompletedAt, w.TechnicianCompletedBy)
	add(StageSupervisorApproved, w.SupervisorApprovedAt, w.SupervisorApprovedBy)
	add(StageEngineerApproved, w.EngineerApprovedAt, w.EngineerApprovedBy)
	add(StageCustomerReviewed, w.CustomerReviewedAt, w.CustomerReviewedBy)
	add(StageAutoClosed, w.AutoClosedAt, nil)
	add(StageMaintenanceManagerApproved, w.MaintenanceManagerApprovedAt, w.MaintenanceManagerApprovedBy)
	if w.RejectedAt != nil {
		out = append(out, StageCompletion{Stage: rejectedStage(w.RejectionStage), ActorID: w.RejectedBy, At: *w.RejectedAt, Outcome: OutcomeRejected})
	}
	return out
}

// Completed reports whether the stage finished successfully.
func (w *WorkOrder) Completed(stage Stage) bool {
	for _, sc := range w.Stages() {
		if sc.Stage == stage && sc.Outcome == OutcomeDone {
			return true
		}
	}
	return false
}

func rejectedStage(stage *RejectionStage) Stage {
	if stage == nil {
		return StageAssigned
	}
	switch *stage {
	case RejectionStageSupervisor:
		return StageSupervisorApproved
	case RejectionStageEngineer:
		return StageEngineerApproved
	case RejectionStageReporter:
		return StageCustomerReviewed
	default:
		return StageTechnicianCompleted
	}
}

func stringPtrOrNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
