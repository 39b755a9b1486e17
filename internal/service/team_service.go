package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/repository"
	"github.com/medops-hub/workorder-service/pkg/util"
)

// TeamService manages the maintenance teams work orders are routed to.
type TeamService struct {
	teams repository.TeamRepository
}

// TeamUpdate carries optional changes to a team.
type TeamUpdate struct {
	Name      *string
	Specialty *string
	IsActive  *bool
}

// NewTeamService creates the service.
func NewTeamService(teams repository.TeamRepository) *TeamService {
	return &TeamService{teams: teams}
}

func requireTeamAdmin(actor domain.Actor) error {
	if !actor.Roles.HasAny(domain.RoleMaintenanceManager, domain.RoleAdmin) {
		return util.NewForbidden("maintenance manager or admin required")
	}
	return nil
}

// Create adds an active team.
func (s *TeamService) Create(ctx context.Context, actor domain.Actor, name, specialty string) (*domain.Team, error) {
	if err := requireTeamAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, util.NewValidationError("name required", nil)
	}
	team := &domain.Team{Name: name, Specialty: strings.TrimSpace(specialty), IsActive: true}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	return team, nil
}

// ListActive returns the teams that can receive assignments.
func (s *TeamService) ListActive(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teams.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return teams, nil
}

// Get fetches a team.
func (s *TeamService) Get(ctx context.Context, id string) (*domain.Team, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, util.NewNotFound("team", map[string]any{"id": id})
	}
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("team", map[string]any{"id": id})
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

// Update applies the non-nil fields of upd. Deactivating a team does not touch
// work orders already assigned to it; it only blocks new assignments.
func (s *TeamService) Update(ctx context.Context, actor domain.Actor, id string, upd TeamUpdate) (*domain.Team, error) {
	if err := requireTeamAdmin(actor); err != nil {
		return nil, err
	}
	team, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, util.NewValidationError("name cannot be empty", nil)
		}
		team.Name = name
	}
	if upd.Specialty != nil {
		team.Specialty = strings.TrimSpace(*upd.Specialty)
	}
	if upd.IsActive != nil {
		team.IsActive = *upd.IsActive
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}
	return team, nil
}
