// Package workflow holds the work order state machine: the static transition
// table, role guards, the auto-close window and the display lookups. Everything
// here is a pure function of its inputs and safe for concurrent use.
package workflow

import (
	"time"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// DefaultAutoCloseWindow is how long a reporter has to act before auto-close.
const DefaultAutoCloseWindow = 24 * time.Hour

// Policy carries the tunable product rules.
type Policy struct {
	AutoCloseWindow time.Duration
	// AllowAdminFastTrack lets an admin skip missing prior-stage approvals.
	AllowAdminFastTrack bool
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{AutoCloseWindow: DefaultAutoCloseWindow}
}

// Engine evaluates transitions under a fixed policy.
type Engine struct {
	policy Policy
}

// New builds an engine; a non-positive window falls back to 24 hours.
func New(policy Policy) Engine {
	if policy.AutoCloseWindow <= 0 {
		policy.AutoCloseWindow = DefaultAutoCloseWindow
	}
	return Engine{policy: policy}
}

// Policy returns the rules the engine was built with.
func (e Engine) Policy() Policy {
	return e.policy
}

// CanTransition decides whether actor may move wo from `from` to `to`.
// Checks run in order: terminal state, adjacency, role, preconditions.
func (e Engine) CanTransition(from, to domain.WorkOrderStatus, actor domain.Actor, wo *domain.WorkOrder) Result {
	mustKnow(from, to)
	if wo == nil {
		wo = &domain.WorkOrder{Status: from}
	}
	if from.Terminal() {
		return invalid(ReasonAlreadyTerminal, "work order is %s", from)
	}
	ed, ok := lookupEdge(from, to)
	if !ok {
		return invalid(ReasonNoSuchEdge, "%s cannot move to %s", from, to)
	}
	if !ed.allow.allows(actor, wo) {
		return invalid(ReasonWrongRole, "%s on %s requires %s", ed.action, from, describeGuard(ed.allow))
	}

	res := valid()
	for _, pre := range ed.requires {
		if pre.present(wo) {
			continue
		}
		if pre.stage && e.policy.AllowAdminFastTrack && actor.Roles.Has(domain.RoleAdmin) {
			res.FastTrack = true
			continue
		}
		return invalid(ReasonMissingPrecondition, "%s is not set", pre.field)
	}
	return res
}

// WorkflowState describes what an actor can currently do with a work order.
type WorkflowState struct {
	Status       domain.WorkOrderStatus
	Terminal     bool
	AwaitingRole string
	Actions      []AvailableAction
	AutoClose    AutoCloseEvaluation
}

// AvailableAction is one transition the actor may take now.
type AvailableAction struct {
	Name   Action
	Target domain.WorkOrderStatus
	// NeedsTeam is set when the request must carry a team id.
	NeedsTeam bool
	// NeedsReason is set when the request must carry a reason.
	NeedsReason bool
}

// GetWorkOrderState lists the actions open to actor at wo's current status.
func (e Engine) GetWorkOrderState(wo *domain.WorkOrder, actor domain.Actor, now time.Time) WorkflowState {
	mustKnow(wo.Status)
	state := WorkflowState{
		Status:       wo.Status,
		Terminal:     wo.Status.Terminal(),
		AwaitingRole: awaitingRole(wo.Status),
		Actions:      []AvailableAction{},
		AutoClose:    e.EvaluateAutoClose(wo, now),
	}
	if state.Terminal {
		return state
	}
	for _, ed := range edgesFrom(wo.Status) {
		if ed.action == ActionAutoClose && !state.AutoClose.ShouldAutoClose {
			continue
		}
		if !e.CanTransition(ed.from, ed.to, actor, wo).Valid {
			continue
		}
		state.Actions = append(state.Actions, AvailableAction{
			Name:        ed.action,
			Target:      ed.to,
			NeedsTeam:   ed.to == domain.StatusAssigned,
			NeedsReason: needsReason(ed),
		})
	}
	return state
}

func needsReason(ed edge) bool {
	return ed.to.Rejected() || ed.action == ActionRedirect || ed.action == ActionReturn
}

func awaitingRole(status domain.WorkOrderStatus) string {
	switch status {
	case domain.StatusPending, domain.StatusNeedsRedirection,
		domain.StatusRejectedByTechnician, domain.StatusRejectedBySupervisor,
		domain.StatusRejectedByEngineer, domain.StatusCustomerRejected,
		domain.StatusPendingSupervisorApproval:
		return domain.RoleSupervisor.String()
	case domain.StatusAssigned, domain.StatusInProgress:
		return domain.RoleTechnician.String()
	case domain.StatusPendingEngineerReview:
		return domain.RoleEngineer.String()
	case domain.StatusPendingReporterClosure:
		return domain.RoleReporter.String()
	case domain.StatusCustomerApproved:
		return domain.RoleMaintenanceManager.String()
	}
	return ""
}

func describeGuard(g guard) string {
	parts := make([]string, 0, len(g.roles)+2)
	for _, r := range g.roles {
		parts = append(parts, r.String())
	}
	if g.team {
		parts = append(parts, "assigned team membership")
	}
	if g.reporter {
		parts = append(parts, "the original reporter")
	}
	out := ""
	for i, p := range parts {
		switch {
		case i == 0:
			out = p
		case i == len(parts)-1:
			out += " or " + p
		default:
			out += ", " + p
		}
	}
	return out
}
