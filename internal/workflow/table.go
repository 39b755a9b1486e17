package workflow

import "github.com/medops-hub/workorder-service/internal/domain"

// Action names the user-facing operation behind an edge.
type Action string

const (
	ActionAssign    Action = "assign"
	ActionStart     Action = "start"
	ActionComplete  Action = "complete"
	ActionApprove   Action = "approve"
	ActionReturn    Action = "return"
	ActionReject    Action = "reject"
	ActionRedirect  Action = "redirect"
	ActionReassign  Action = "reassign"
	ActionConfirm   Action = "confirm"
	ActionSignOff   Action = "sign_off"
	ActionAutoClose Action = "auto_close"
	ActionCancel    Action = "cancel"
)

// guard lists who may take an edge. Any one matching clause is enough.
type guard struct {
	roles    []domain.Role
	team     bool
	reporter bool
}

func (g guard) allows(actor domain.Actor, wo *domain.WorkOrder) bool {
	if actor.Roles.HasAny(g.roles...) {
		return true
	}
	if g.reporter && actor.IsReporter {
		return true
	}
	if g.team && wo.AssignedTeam != nil && actor.InTeam(*wo.AssignedTeam) {
		return true
	}
	return false
}

type precondition struct {
	field string
	// stage marks a prior-stage stamp that an admin fast-track may skip.
	stage   bool
	present func(*domain.WorkOrder) bool
}

type edge struct {
	from     domain.WorkOrderStatus
	to       domain.WorkOrderStatus
	action   Action
	allow    guard
	requires []precondition
}

var (
	dispatchers = []domain.Role{domain.RoleSupervisor, domain.RoleMaintenanceManager, domain.RoleAdmin}
	managers    = []domain.Role{domain.RoleMaintenanceManager, domain.RoleAdmin}
)

var (
	needTeam = precondition{field: "assigned_team", present: func(w *domain.WorkOrder) bool {
		return w.AssignedTeam != nil
	}}
	needTechnicianCompleted = precondition{field: "technician_completed_at", stage: true, present: func(w *domain.WorkOrder) bool {
		return w.TechnicianCompletedAt != nil
	}}
	needSupervisorApproved = precondition{field: "supervisor_approved_at", stage: true, present: func(w *domain.WorkOrder) bool {
		return w.SupervisorApprovedAt != nil
	}}
	needEngineerApproved = precondition{field: "engineer_approved_at", stage: true, present: func(w *domain.WorkOrder) bool {
		return w.EngineerApprovedAt != nil
	}}
	needCustomerReviewed = precondition{field: "customer_reviewed_at", stage: true, present: func(w *domain.WorkOrder) bool {
		return w.CustomerReviewedAt != nil
	}}
	needPendingClosure = precondition{field: "pending_closure_since", present: func(w *domain.WorkOrder) bool {
		return w.PendingClosureSince != nil
	}}
)

func buildEdges() []edge {
	teamGuard := guard{team: true}
	reporterGate := guard{reporter: true, roles: []domain.Role{domain.RoleAdmin}}

	edges := []edge{
		{from: domain.StatusPending, to: domain.StatusAssigned, action: ActionAssign, allow: guard{roles: dispatchers}},
		{from: domain.StatusPending, to: domain.StatusCancelled, action: ActionCancel, allow: guard{roles: managers, reporter: true}},

		{from: domain.StatusAssigned, to: domain.StatusInProgress, action: ActionStart,
			allow: guard{team: true, roles: []domain.Role{domain.RoleAdmin}}, requires: []precondition{needTeam}},
		{from: domain.StatusAssigned, to: domain.StatusRejectedByTechnician, action: ActionReject, allow: teamGuard, requires: []precondition{needTeam}},
		{from: domain.StatusAssigned, to: domain.StatusNeedsRedirection, action: ActionRedirect,
			allow: guard{team: true, roles: []domain.Role{domain.RoleSupervisor}}},

		{from: domain.StatusInProgress, to: domain.StatusPendingSupervisorApproval, action: ActionComplete, allow: teamGuard, requires: []precondition{needTeam}},
		{from: domain.StatusInProgress, to: domain.StatusRejectedByTechnician, action: ActionReject, allow: teamGuard, requires: []precondition{needTeam}},
		{from: domain.StatusInProgress, to: domain.StatusNeedsRedirection, action: ActionRedirect,
			allow: guard{team: true, roles: []domain.Role{domain.RoleSupervisor}}},

		{from: domain.StatusPendingSupervisorApproval, to: domain.StatusPendingEngineerReview, action: ActionApprove,
			allow: guard{roles: []domain.Role{domain.RoleSupervisor}}, requires: []precondition{needTechnicianCompleted}},
		{from: domain.StatusPendingSupervisorApproval, to: domain.StatusInProgress, action: ActionReturn,
			allow: guard{roles: []domain.Role{domain.RoleSupervisor}}},
		{from: domain.StatusPendingSupervisorApproval, to: domain.StatusRejectedBySupervisor, action: ActionReject,
			allow: guard{roles: []domain.Role{domain.RoleSupervisor}}},

		{from: domain.StatusPendingEngineerReview, to: domain.StatusPendingReporterClosure, action: ActionApprove,
			allow: guard{roles: []domain.Role{domain.RoleEngineer}}, requires: []precondition{needSupervisorApproved}},
		{from: domain.StatusPendingEngineerReview, to: domain.StatusPendingSupervisorApproval, action: ActionReturn,
			allow: guard{roles: []domain.Role{domain.RoleEngineer}}},
		{from: domain.StatusPendingEngineerReview, to: domain.StatusRejectedByEngineer, action: ActionReject,
			allow: guard{roles: []domain.Role{domain.RoleEngineer}}},

		{from: domain.StatusPendingReporterClosure, to: domain.StatusCompleted, action: ActionConfirm, allow: reporterGate, requires: []precondition{needEngineerApproved}},
		{from: domain.StatusPendingReporterClosure, to: domain.StatusCustomerApproved, action: ActionConfirm, allow: reporterGate, requires: []precondition{needEngineerApproved}},
		{from: domain.StatusPendingReporterClosure, to: domain.StatusCustomerRejected, action: ActionReject, allow: reporterGate, requires: []precondition{needEngineerApproved}},
		{from: domain.StatusPendingReporterClosure, to: domain.StatusAutoClosed, action: ActionAutoClose,
			allow: guard{roles: []domain.Role{domain.RoleSystem}}, requires: []precondition{needPendingClosure}},

		{from: domain.StatusCustomerApproved, to: domain.StatusCompleted, action: ActionSignOff, allow: guard{roles: managers}, requires: []precondition{needCustomerReviewed}},
	}

	for _, from := range []domain.WorkOrderStatus{
		domain.StatusRejectedByTechnician,
		domain.StatusRejectedBySupervisor,
		domain.StatusRejectedByEngineer,
		domain.StatusCustomerRejected,
		domain.StatusNeedsRedirection,
	} {
		edges = append(edges, edge{from: from, to: domain.StatusAssigned, action: ActionReassign, allow: guard{roles: dispatchers}})
		if from != domain.StatusNeedsRedirection {
			edges = append(edges, edge{from: from, to: domain.StatusNeedsRedirection, action: ActionRedirect, allow: guard{roles: dispatchers}})
		}
	}

	for _, from := range domain.AllStatuses {
		if from.Terminal() || from == domain.StatusPending {
			continue
		}
		edges = append(edges, edge{from: from, to: domain.StatusCancelled, action: ActionCancel, allow: guard{roles: managers}})
	}
	return edges
}

var (
	edgeList  = buildEdges()
	adjacency = indexEdges(edgeList)
)

func indexEdges(edges []edge) map[domain.WorkOrderStatus]map[domain.WorkOrderStatus]edge {
	idx := make(map[domain.WorkOrderStatus]map[domain.WorkOrderStatus]edge, len(domain.AllStatuses))
	for _, e := range edges {
		if idx[e.from] == nil {
			idx[e.from] = make(map[domain.WorkOrderStatus]edge)
		}
		idx[e.from][e.to] = e
	}
	return idx
}

func lookupEdge(from, to domain.WorkOrderStatus) (edge, bool) {
	e, ok := adjacency[from][to]
	return e, ok
}

func edgesFrom(from domain.WorkOrderStatus) []edge {
	var out []edge
	for _, e := range edgeList {
		if e.from == from {
			out = append(out, e)
		}
	}
	return out
}

// Edge is the exported description of one adjacency entry.
type Edge struct {
	From   domain.WorkOrderStatus
	To     domain.WorkOrderStatus
	Action Action
	Roles  []domain.Role
	Team   bool
	// Reporter is true when the original reporter may take the edge.
	Reporter bool
}

// Edges lists the static transition table.
func Edges() []Edge {
	out := make([]Edge, 0, len(edgeList))
	for _, e := range edgeList {
		out = append(out, Edge{
			From:     e.from,
			To:       e.to,
			Action:   e.action,
			Roles:    append([]domain.Role(nil), e.allow.roles...),
			Team:     e.allow.team,
			Reporter: e.allow.reporter,
		})
	}
	return out
}

// HasEdge reports whether to is reachable from from in one step.
func HasEdge(from, to domain.WorkOrderStatus) bool {
	_, ok := lookupEdge(from, to)
	return ok
}

// ActionFor names the operation behind the from→to edge.
func ActionFor(from, to domain.WorkOrderStatus) (Action, bool) {
	e, ok := lookupEdge(from, to)
	return e.action, ok
}
