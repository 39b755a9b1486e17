package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medops-hub/workorder-service/internal/api/dto"
	"github.com/medops-hub/workorder-service/internal/auth"
	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/service"
	"github.com/medops-hub/workorder-service/pkg/util"
)

// TeamService is the team administration surface the handler depends on.
type TeamService interface {
	Create(ctx context.Context, actor domain.Actor, name, specialty string) (*domain.Team, error)
	ListActive(ctx context.Context) ([]domain.Team, error)
	Get(ctx context.Context, id string) (*domain.Team, error)
	Update(ctx context.Context, actor domain.Actor, id string, upd service.TeamUpdate) (*domain.Team, error)
}

// TeamsHandler manages team endpoints.
type TeamsHandler struct {
	service TeamService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(svc TeamService) *TeamsHandler {
	return &TeamsHandler{service: svc}
}

// Create handles POST /teams.
func (h *TeamsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Name == nil || *req.Name == "" {
		return util.NewValidationError("name required", nil)
	}
	specialty := ""
	if req.Specialty != nil {
		specialty = *req.Specialty
	}
	team, err := h.service.Create(c.UserContext(), actor, *req.Name, specialty)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}

// List handles GET /teams.
func (h *TeamsHandler) List(c *fiber.Ctx) error {
	teams, err := h.service.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		resp = append(resp, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /teams/:id.
func (h *TeamsHandler) Get(c *fiber.Ctx) error {
	team, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// Update handles PATCH /teams/:id.
func (h *TeamsHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.Update(c.UserContext(), actor, c.Params("id"), service.TeamUpdate{
		Name:      req.Name,
		Specialty: req.Specialty,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

func teamResponse(team *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:        team.ID,
		Name:      team.Name,
		Specialty: team.Specialty,
		IsActive:  team.IsActive,
		CreatedAt: team.CreatedAt,
		UpdatedAt: team.UpdatedAt,
	}
}
