package workflow

import (
	"strings"
	"time"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// TransitionRequest is a proposed move of a work order.
type TransitionRequest struct {
	To     domain.WorkOrderStatus
	Actor  domain.Actor
	At     time.Time
	Reason string
	TeamID string
}

// Apply validates req against wo and returns the updated copy. An invalid
// result returns wo untouched; the input is never mutated either way.
func (e Engine) Apply(wo domain.WorkOrder, req TransitionRequest) (domain.WorkOrder, Result) {
	from := wo.Status
	res := e.CanTransition(from, req.To, req.Actor, &wo)
	if !res.Valid {
		return wo, res
	}
	reason := strings.TrimSpace(req.Reason)
	ed, _ := lookupEdge(from, req.To)
	if needsReason(ed) && reason == "" {
		return wo, invalid(ReasonMissingPrecondition, "%s requires a reason", ed.action)
	}
	if req.To == domain.StatusAssigned && strings.TrimSpace(req.TeamID) == "" {
		return wo, invalid(ReasonMissingPrecondition, "team_id is required to assign")
	}
	if req.To == domain.StatusAutoClosed && !e.EvaluateAutoClose(&wo, req.At).ShouldAutoClose {
		return wo, invalid(ReasonMissingPrecondition, "auto-close window has not elapsed")
	}

	out := wo.Clone()
	at := req.At
	by := req.Actor.UserID
	out.Status = req.To
	out.UpdatedAt = at
	if res.FastTrack {
		out.FastTracked = true
	}
	if from == domain.StatusPendingReporterClosure {
		out.PendingClosureSince = nil
	}
	if from.Rejected() {
		clearRejection(&out)
	}

	switch req.To {
	case domain.StatusAssigned:
		team := strings.TrimSpace(req.TeamID)
		if from != domain.StatusPending {
			out.ReassignmentCount++
			out.LastReassignedAt = timePtr(at)
			out.LastReassignedBy = strPtr(by)
			out.ReassignmentReason = optionalStr(reason)
		}
		out.AssignedTeam = &team
		out.AssignedAt = timePtr(at)
		out.AssignedBy = strPtr(by)
	case domain.StatusInProgress:
		if from == domain.StatusPendingSupervisorApproval {
			clearTechnicianCompletion(&out)
		}
	case domain.StatusPendingSupervisorApproval:
		if from == domain.StatusPendingEngineerReview {
			clearSupervisorApproval(&out)
		} else {
			out.TechnicianCompletedAt = timePtr(at)
			out.TechnicianCompletedBy = strPtr(by)
		}
	case domain.StatusPendingEngineerReview:
		out.SupervisorApprovedAt = timePtr(at)
		out.SupervisorApprovedBy = strPtr(by)
	case domain.StatusPendingReporterClosure:
		out.EngineerApprovedAt = timePtr(at)
		out.EngineerApprovedBy = strPtr(by)
		out.PendingClosureSince = timePtr(at)
	case domain.StatusCustomerApproved:
		out.CustomerReviewedAt = timePtr(at)
		out.CustomerReviewedBy = strPtr(by)
	case domain.StatusCompleted:
		if from == domain.StatusCustomerApproved {
			out.MaintenanceManagerApprovedAt = timePtr(at)
			out.MaintenanceManagerApprovedBy = strPtr(by)
		} else {
			out.CustomerReviewedAt = timePtr(at)
			out.CustomerReviewedBy = strPtr(by)
		}
	case domain.StatusAutoClosed:
		out.AutoClosedAt = timePtr(at)
	case domain.StatusCancelled:
		out.CancelledAt = timePtr(at)
		out.CancelledBy = strPtr(by)
	case domain.StatusRejectedByTechnician, domain.StatusRejectedBySupervisor,
		domain.StatusRejectedByEngineer, domain.StatusCustomerRejected:
		stage := rejectionStageFor(req.To)
		out.RejectedAt = timePtr(at)
		out.RejectedBy = strPtr(by)
		out.RejectionStage = &stage
		out.RejectionReason = optionalStr(reason)
		clearTechnicianCompletion(&out)
	}
	return out, res
}

func rejectionStageFor(status domain.WorkOrderStatus) domain.RejectionStage {
	switch status {
	case domain.StatusRejectedBySupervisor:
		return domain.RejectionStageSupervisor
	case domain.StatusRejectedByEngineer:
		return domain.RejectionStageEngineer
	case domain.StatusCustomerRejected:
		return domain.RejectionStageReporter
	default:
		return domain.RejectionStageTechnician
	}
}

func clearRejection(w *domain.WorkOrder) {
	w.RejectedAt = nil
	w.RejectedBy = nil
	w.RejectionStage = nil
	w.RejectionReason = nil
}

// clearTechnicianCompletion resets the completion and every approval after it.
func clearTechnicianCompletion(w *domain.WorkOrder) {
	w.TechnicianCompletedAt = nil
	w.TechnicianCompletedBy = nil
	clearSupervisorApproval(w)
}

func clearSupervisorApproval(w *domain.WorkOrder) {
	w.SupervisorApprovedAt = nil
	w.SupervisorApprovedBy = nil
	w.EngineerApprovedAt = nil
	w.EngineerApprovedBy = nil
	w.CustomerReviewedAt = nil
	w.CustomerReviewedBy = nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}

func optionalStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
