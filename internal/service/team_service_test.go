package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/pkg/util"
)

func TestTeamServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewTeamService(&memTeams{rows: map[string]domain.Team{}})
	manager := domain.Actor{UserID: "mgr", Roles: domain.NewRoleSet(domain.RoleMaintenanceManager)}

	team, err := svc.Create(ctx, manager, "  Plumbing ", "plumbing")
	require.NoError(t, err)
	assert.Equal(t, "Plumbing", team.Name)
	assert.True(t, team.IsActive)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	off := false
	updated, err := svc.Update(ctx, manager, team.ID, TeamUpdate{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Plumbing", updated.Name)

	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.NotNil(t, active)
}

func TestTeamServiceRequiresManager(t *testing.T) {
	svc := NewTeamService(&memTeams{rows: map[string]domain.Team{}})
	supervisor := domain.Actor{UserID: "sup", Roles: domain.NewRoleSet(domain.RoleSupervisor)}

	_, err := svc.Create(context.Background(), supervisor, "Electrical", "")
	de := util.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "FORBIDDEN", de.Code)
}

func TestTeamServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewTeamService(&memTeams{rows: map[string]domain.Team{}})
	admin := domain.Actor{UserID: "adm", Roles: domain.NewRoleSet(domain.RoleAdmin)}

	_, err := svc.Create(ctx, admin, " ", "")
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)

	_, err = svc.Get(ctx, "00000000-0000-0000-0000-000000000001")
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)

	team, err := svc.Create(ctx, admin, "HVAC", "")
	require.NoError(t, err)
	blank := ""
	_, err = svc.Update(ctx, admin, team.ID, TeamUpdate{Name: &blank})
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}
