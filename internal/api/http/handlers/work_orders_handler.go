package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/medops-hub/workorder-service/internal/api/dto"
	"github.com/medops-hub/workorder-service/internal/auth"
	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/service"
	"github.com/medops-hub/workorder-service/internal/workflow"
	"github.com/medops-hub/workorder-service/pkg/util"
)

// WorkOrderService is the use-case surface the handler depends on.
type WorkOrderService interface {
	Report(ctx context.Context, actor domain.Actor, input service.ReportInput) (*domain.WorkOrder, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*service.WorkOrderView, error)
	List(ctx context.Context, filter service.ListFilter) ([]domain.WorkOrder, error)
	Transition(ctx context.Context, actor domain.Actor, id string, input service.TransitionInput) (*domain.WorkOrder, error)
	Reassign(ctx context.Context, actor domain.Actor, id, teamID, reason string) (*domain.WorkOrder, error)
	History(ctx context.Context, id string, limit, offset int) ([]domain.UpdateLog, error)
}

// WorkOrdersHandler serves the work order endpoints.
type WorkOrdersHandler struct {
	service WorkOrderService
}

// NewWorkOrdersHandler constructs handler.
func NewWorkOrdersHandler(svc WorkOrderService) *WorkOrdersHandler {
	return &WorkOrdersHandler{service: svc}
}

// Report POST /work-orders.
func (h *WorkOrdersHandler) Report(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.ReportWorkOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return util.NewValidationError("title required", nil)
	}

	wo, err := h.service.Report(c.UserContext(), actor, service.ReportInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		AssetID:     req.AssetID,
		Priority:    req.Priority,
		Urgency:     req.Urgency,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": workOrderDetail(wo, nil, localeOf(c))})
}

// List GET /work-orders.
func (h *WorkOrdersHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	filter, err := parseListQuery(c, actor)
	if err != nil {
		return err
	}
	orders, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	locale := localeOf(c)
	items := make([]dto.WorkOrderSummary, 0, len(orders))
	for i := range orders {
		items = append(items, workOrderSummary(&orders[i], locale))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /work-orders/:id.
func (h *WorkOrdersHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	view, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workOrderDetail(view.WorkOrder, &view.State, localeOf(c))})
}

// Transition POST /work-orders/:id/transitions.
func (h *WorkOrdersHandler) Transition(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	to, err := domain.ParseStatus(req.To)
	if err != nil {
		return util.NewValidationError("unknown target status", map[string]any{"to": req.To})
	}
	wo, err := h.service.Transition(c.UserContext(), actor, c.Params("id"), service.TransitionInput{
		To:     to,
		Reason: req.Reason,
		TeamID: req.TeamID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workOrderDetail(wo, nil, localeOf(c))})
}

// Reassign POST /work-orders/:id/reassign.
func (h *WorkOrdersHandler) Reassign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TeamID) == "" {
		return util.NewValidationError("team_id required", nil)
	}
	wo, err := h.service.Reassign(c.UserContext(), actor, c.Params("id"), req.TeamID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workOrderDetail(wo, nil, localeOf(c))})
}

// History GET /work-orders/:id/history.
func (h *WorkOrdersHandler) History(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	entries, err := h.service.History(c.UserContext(), c.Params("id"), pageSize, pageOffset(page, pageSize))
	if err != nil {
		return err
	}
	items := make([]dto.UpdateLogResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.UpdateLogResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorRoles: e.ActorRoles,
			Action:     e.Action,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Reason:     e.Reason,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseListQuery(c *fiber.Ctx, actor domain.Actor) (service.ListFilter, error) {
	filter := service.ListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status, err := domain.ParseStatus(part)
			if err != nil {
				return filter, util.NewValidationError("unknown status", map[string]any{"status": part})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.WorkOrderPriority(strings.TrimSpace(part)))
		}
	}
	if team := strings.TrimSpace(c.Query("team_id")); team != "" {
		filter.TeamID = &team
	}
	if c.QueryBool("mine") {
		filter.ReportedBy = &actor.UserID
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filter.SearchTerm = &q
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	filter.Offset = pageOffset(page, pageSize)
	filter.Limit = pageSize
	return filter, nil
}

const maxPageSize = 100

// pageOffset converts a 1-based page into a row offset, clamped below MaxInt32.
func pageOffset(page, pageSize int) int {
	if limit := math.MaxInt32 / pageSize; page > limit {
		page = limit
	}
	return (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func localeOf(c *fiber.Ctx) workflow.Locale {
	if raw := c.Query("locale"); raw != "" {
		return workflow.ParseLocale(raw)
	}
	return workflow.ParseLocale(c.Get(fiber.HeaderAcceptLanguage))
}

func workOrderSummary(wo *domain.WorkOrder, locale workflow.Locale) dto.WorkOrderSummary {
	return dto.WorkOrderSummary{
		ID:                wo.ID,
		Code:              wo.Code,
		Title:             wo.Title,
		Location:          wo.Location,
		Priority:          wo.Priority,
		Urgency:           wo.Urgency,
		Status:            wo.Status,
		StatusLabel:       workflow.DisplayName(wo.Status, locale),
		StatusColor:       workflow.Color(wo.Status),
		AssignedTeam:      wo.AssignedTeam,
		ReportedBy:        wo.ReportedBy,
		ReportedAt:        wo.ReportedAt,
		ReassignmentCount: wo.ReassignmentCount,
		UpdatedAt:         wo.UpdatedAt,
	}
}

func workOrderDetail(wo *domain.WorkOrder, state *workflow.WorkflowState, locale workflow.Locale) dto.WorkOrderDetail {
	out := dto.WorkOrderDetail{
		WorkOrderSummary:    workOrderSummary(wo, locale),
		Description:         wo.Description,
		AssetID:             wo.AssetID,
		FastTracked:         wo.FastTracked,
		PendingClosureSince: wo.PendingClosureSince,
		ReassignmentReason:  wo.ReassignmentReason,
	}
	if wo.RejectedAt != nil && wo.RejectionStage != nil {
		out.Rejection = &dto.RejectionResponse{
			Stage:  *wo.RejectionStage,
			By:     wo.RejectedBy,
			At:     *wo.RejectedAt,
			Reason: wo.RejectionReason,
		}
	}
	stages := wo.Stages()
	out.Stages = make([]dto.StageResponse, 0, len(stages))
	for _, s := range stages {
		out.Stages = append(out.Stages, dto.StageResponse{Stage: s.Stage, ActorID: s.ActorID, At: s.At, Outcome: s.Outcome})
	}
	if state != nil {
		out.Workflow = workflowResponse(state)
	}
	return out
}

func workflowResponse(state *workflow.WorkflowState) *dto.WorkflowResponse {
	resp := &dto.WorkflowResponse{
		Terminal:     state.Terminal,
		AwaitingRole: state.AwaitingRole,
		Actions:      make([]dto.ActionResponse, 0, len(state.Actions)),
	}
	for _, a := range state.Actions {
		resp.Actions = append(resp.Actions, dto.ActionResponse{
			Action:      string(a.Name),
			To:          a.Target,
			NeedsTeam:   a.NeedsTeam,
			NeedsReason: a.NeedsReason,
		})
	}
	if state.AutoClose.Applicable {
		resp.AutoClose = &dto.AutoCloseResponse{
			Deadline:        state.AutoClose.Deadline,
			ShouldAutoClose: state.AutoClose.ShouldAutoClose,
			HoursRemaining:  state.AutoClose.HoursRemaining,
		}
	}
	return resp
}
