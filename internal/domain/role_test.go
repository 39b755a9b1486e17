package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleAliases(t *testing.T) {
	tests := map[string]Role{
		"reporter":         RoleReporter,
		"Nurse":            RoleReporter,
		"tech":             RoleTechnician,
		"facility-manager": RoleMaintenanceManager,
		" SUPER_ADMIN ":    RoleAdmin,
	}
	for raw, want := range tests {
		got, ok := ParseRole(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseRole("system")
	assert.False(t, ok, "system must never be granted externally")
}

func TestRoleSet(t *testing.T) {
	set, unknown := ParseRoleSet([]string{"engineer", "supervisor", "janitor", "engineer"})
	assert.Equal(t, []string{"janitor"}, unknown)
	assert.True(t, set.Has(RoleEngineer))
	assert.True(t, set.HasAny(RoleAdmin, RoleSupervisor))
	assert.False(t, set.Has(RoleAdmin))
	assert.Equal(t, []Role{RoleSupervisor, RoleEngineer}, set.Roles())
	assert.Equal(t, "engineer,supervisor", set.String())

	var empty RoleSet
	assert.Empty(t, empty.Roles())
	assert.Equal(t, "", empty.String())
}

func TestStatusHelpers(t *testing.T) {
	s, err := ParseStatus(" In_Progress ")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	_, err = ParseStatus("archived")
	assert.Error(t, err)

	assert.True(t, StatusAutoClosed.Terminal())
	assert.False(t, StatusCustomerRejected.Terminal())
	assert.True(t, StatusCustomerRejected.Rejected())
	assert.False(t, StatusNeedsRedirection.Rejected())
	assert.Len(t, AllStatuses, 15)
}

func TestActorForWorkOrder(t *testing.T) {
	wo := &WorkOrder{ReportedBy: "u1"}
	a := Actor{UserID: "u1", TeamIDs: []string{"t1"}}.ForWorkOrder(wo)
	assert.True(t, a.IsReporter)
	assert.True(t, a.InTeam("t1"))
	assert.False(t, a.InTeam(""))
	assert.False(t, Actor{UserID: "u2"}.ForWorkOrder(wo).IsReporter)
	assert.False(t, Actor{UserID: "u1"}.ForWorkOrder(nil).IsReporter)
}

func TestStagesIncludeActiveRejection(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	stage := RejectionStageEngineer
	wo := WorkOrder{
		ReportedBy:     "u1",
		ReportedAt:     now,
		AssignedAt:     &now,
		RejectedAt:     &now,
		RejectionStage: &stage,
	}
	stages := wo.Stages()
	require.Len(t, stages, 3)
	assert.Equal(t, StageEngineerApproved, stages[2].Stage)
	assert.Equal(t, OutcomeRejected, stages[2].Outcome)
	assert.True(t, wo.Completed(StageAssigned))
	assert.False(t, wo.Completed(StageEngineerApproved))
}
