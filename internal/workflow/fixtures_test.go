package workflow_test

import (
	"time"

	"github.com/medops-hub/workorder-service/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

const (
	reporterID = "user-reporter"
	teamHVAC   = "team-hvac"
	teamElec   = "team-electrical"
)

func ptr[T any](v T) *T { return &v }

func reporter() domain.Actor {
	return domain.Actor{UserID: reporterID, Roles: domain.NewRoleSet(domain.RoleReporter), IsReporter: true}
}

func technician(teams ...string) domain.Actor {
	return domain.Actor{UserID: "user-tech", Roles: domain.NewRoleSet(domain.RoleTechnician), TeamIDs: teams}
}

func supervisor() domain.Actor {
	return domain.Actor{UserID: "user-supervisor", Roles: domain.NewRoleSet(domain.RoleSupervisor)}
}

func engineer() domain.Actor {
	return domain.Actor{UserID: "user-engineer", Roles: domain.NewRoleSet(domain.RoleEngineer)}
}

func manager() domain.Actor {
	return domain.Actor{UserID: "user-manager", Roles: domain.NewRoleSet(domain.RoleMaintenanceManager)}
}

func admin() domain.Actor {
	return domain.Actor{UserID: "user-admin", Roles: domain.NewRoleSet(domain.RoleAdmin)}
}

// everyone holds every role, belongs to every team and reported the work order.
func everyone() domain.Actor {
	return domain.Actor{
		UserID: reporterID,
		Roles: domain.NewRoleSet(domain.RoleReporter, domain.RoleTechnician, domain.RoleSupervisor,
			domain.RoleEngineer, domain.RoleMaintenanceManager, domain.RoleAdmin, domain.RoleSystem),
		TeamIDs:    []string{teamHVAC, teamElec},
		IsReporter: true,
	}
}

// snapshot builds a consistent work order sitting in status, with every
// upstream stage stamped one hour apart.
func snapshot(status domain.WorkOrderStatus) domain.WorkOrder {
	wo := domain.WorkOrder{
		ID:         "wo-1",
		Code:       "WO-TEST0001",
		Title:      "AC unit leaking in ward 3",
		Priority:   domain.PriorityHigh,
		Urgency:    domain.UrgencyUrgent,
		Status:     status,
		ReportedBy: reporterID,
		ReportedAt: t0,
		CreatedAt:  t0,
		UpdatedAt:  t0,
	}
	step := func(n int) *time.Time { return ptr(t0.Add(time.Duration(n) * time.Hour)) }

	order := map[domain.WorkOrderStatus]int{
		domain.StatusPending:                   0,
		domain.StatusAssigned:                  1,
		domain.StatusInProgress:                1,
		domain.StatusPendingSupervisorApproval: 2,
		domain.StatusPendingEngineerReview:     3,
		domain.StatusPendingReporterClosure:    4,
		domain.StatusCustomerApproved:          5,
	}
	level := order[status]
	if level >= 1 {
		wo.AssignedTeam = ptr(teamHVAC)
		wo.AssignedAt = step(1)
		wo.AssignedBy = ptr("user-supervisor")
	}
	if level >= 2 {
		wo.TechnicianCompletedAt = step(2)
		wo.TechnicianCompletedBy = ptr("user-tech")
	}
	if level >= 3 {
		wo.SupervisorApprovedAt = step(3)
		wo.SupervisorApprovedBy = ptr("user-supervisor")
	}
	if level >= 4 {
		wo.EngineerApprovedAt = step(4)
		wo.EngineerApprovedBy = ptr("user-engineer")
	}
	if status == domain.StatusPendingReporterClosure {
		wo.PendingClosureSince = step(4)
	}
	if level >= 5 {
		wo.CustomerReviewedAt = step(5)
		wo.CustomerReviewedBy = ptr(reporterID)
	}
	return wo
}
