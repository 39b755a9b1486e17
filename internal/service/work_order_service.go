package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/events"
	"github.com/medops-hub/workorder-service/internal/observability"
	"github.com/medops-hub/workorder-service/internal/repository"
	"github.com/medops-hub/workorder-service/internal/workflow"
	"github.com/medops-hub/workorder-service/pkg/util"
)

// ActionReport is the update log action recorded for a new work order.
const ActionReport = "report"

// WorkOrderService coordinates work order workflows.
type WorkOrderService struct {
	orders   repository.WorkOrderRepository
	teams    repository.TeamRepository
	engine   workflow.Engine
	recorder *transitionRecorder
	logger   *zap.Logger
	metrics  *observability.Metrics
	// Now is the clock; tests replace it.
	Now func() time.Time
}

// WorkOrderDependencies bundles collaborators for the work order service.
type WorkOrderDependencies struct {
	WorkOrderRepo repository.WorkOrderRepository
	UpdateLogRepo repository.UpdateLogRepository
	TeamRepo      repository.TeamRepository
	Engine        workflow.Engine
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// ReportInput describes a new maintenance request.
type ReportInput struct {
	Title       string
	Description string
	Location    string
	AssetID     *string
	Priority    domain.WorkOrderPriority
	Urgency     domain.WorkOrderUrgency
}

// TransitionInput describes a requested status change.
type TransitionInput struct {
	To     domain.WorkOrderStatus
	Reason string
	TeamID string
}

// ListFilter describes list filters.
type ListFilter struct {
	Statuses   []domain.WorkOrderStatus
	Priorities []domain.WorkOrderPriority
	TeamID     *string
	ReportedBy *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// WorkOrderView pairs a work order with what the caller may do next.
type WorkOrderView struct {
	WorkOrder *domain.WorkOrder
	State     workflow.WorkflowState
}

// NewWorkOrderService constructs the service.
func NewWorkOrderService(deps WorkOrderDependencies) *WorkOrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkOrderService{
		orders:   deps.WorkOrderRepo,
		teams:    deps.TeamRepo,
		engine:   deps.Engine,
		recorder: &transitionRecorder{logs: deps.UpdateLogRepo, dispatcher: deps.Dispatcher, logger: logger},
		logger:   logger,
		metrics:  deps.Metrics,
		Now:      time.Now,
	}
}

// Report files a new work order in pending status.
func (s *WorkOrderService) Report(ctx context.Context, actor domain.Actor, input ReportInput) (*domain.WorkOrder, error) {
	if actor.UserID == "" {
		return nil, util.NewUnauthorized("actor required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, util.NewValidationError("title required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !validPriority(priority) {
		return nil, util.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	urgency := input.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}
	if !validUrgency(urgency) {
		return nil, util.NewValidationError("invalid urgency", map[string]any{"urgency": urgency})
	}

	now := s.Now().UTC()
	wo := &domain.WorkOrder{
		Code:        generateWorkOrderCode(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		AssetID:     input.AssetID,
		Priority:    priority,
		Urgency:     urgency,
		Status:      domain.StatusPending,
		ReportedBy:  actor.UserID,
		ReportedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orders.Create(ctx, wo); err != nil {
		return nil, fmt.Errorf("create work order: %w", err)
	}

	s.recorder.appendLog(ctx, &domain.UpdateLog{
		WorkOrderID: wo.ID,
		ActorID:     actor.UserID,
		ActorRoles:  actor.Roles.Strings(),
		Action:      ActionReport,
		ToStatus:    domain.StatusPending,
		Metadata:    map[string]any{"priority": priority, "urgency": urgency},
		CreatedAt:   now,
	})
	s.recorder.publish(ctx, events.Event{
		Type:        events.EventWorkOrderReported,
		WorkOrderID: wo.ID,
		Actor:       events.ActorFrom(actor),
		Timestamp:   now,
		Payload: events.WorkOrderReportedPayload{
			Code:       wo.Code,
			Title:      wo.Title,
			Location:   wo.Location,
			Priority:   wo.Priority,
			Urgency:    wo.Urgency,
			ReportedBy: wo.ReportedBy,
		},
	})
	s.logger.Info("work order reported", zap.String("work_order_id", wo.ID), zap.String("code", wo.Code))
	return wo, nil
}

// Get loads a work order with the actions open to actor.
func (s *WorkOrderService) Get(ctx context.Context, actor domain.Actor, id string) (*WorkOrderView, error) {
	wo, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	state := s.engine.GetWorkOrderState(wo, actor.ForWorkOrder(wo), s.Now().UTC())
	return &WorkOrderView{WorkOrder: wo, State: state}, nil
}

// List returns work orders matching filter.
func (s *WorkOrderService) List(ctx context.Context, filter ListFilter) ([]domain.WorkOrder, error) {
	orders, err := s.orders.ListWithFilter(ctx, repository.WorkOrderFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		TeamID:     filter.TeamID,
		ReportedBy: filter.ReportedBy,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	return orders, nil
}

// Transition moves a work order on behalf of actor. The write is conditioned on
// the status that was read, so a concurrent change surfaces as CONFLICT and the
// caller must re-read and re-validate.
func (s *WorkOrderService) Transition(ctx context.Context, actor domain.Actor, id string, input TransitionInput) (*domain.WorkOrder, error) {
	if !input.To.Valid() {
		return nil, util.NewValidationError("unknown target status", map[string]any{"to": input.To})
	}
	snapshot, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	actor = actor.ForWorkOrder(snapshot)
	from := snapshot.Status

	next, res := s.engine.Apply(*snapshot, workflow.TransitionRequest{
		To:     input.To,
		Actor:  actor,
		At:     s.Now().UTC(),
		Reason: input.Reason,
		TeamID: input.TeamID,
	})
	if !res.Valid {
		s.metrics.RecordTransition(string(from), string(input.To), string(res.Reason))
		return nil, util.NewTransitionError(res, map[string]any{"from": from, "to": input.To})
	}
	if err := workflow.CheckInvariants(&next); err != nil {
		s.logger.Warn("work order invariants violated after transition",
			zap.String("work_order_id", next.ID),
			zap.String("to", string(next.Status)),
			zap.Error(err))
	}
	if input.To == domain.StatusAssigned {
		if err := s.requireActiveTeam(ctx, *next.AssignedTeam); err != nil {
			return nil, err
		}
	}

	if err := s.orders.UpdateIfStatus(ctx, &next, from); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.RecordTransition(string(from), string(input.To), "conflict")
			return nil, util.NewConflict("work order was modified concurrently; reload and retry",
				map[string]any{"work_order_id": id, "expected_status": from})
		}
		return nil, fmt.Errorf("update work order: %w", err)
	}
	s.metrics.RecordTransition(string(from), string(input.To), "applied")

	s.recorder.recordTransition(ctx, actor, snapshot, &next, input.Reason, res.FastTrack)
	s.logger.Info("work order transitioned",
		zap.String("work_order_id", next.ID),
		zap.String("from", string(from)),
		zap.String("to", string(next.Status)),
		zap.String("actor", actor.UserID))
	return &next, nil
}

// Reassign routes a work order to teamID.
func (s *WorkOrderService) Reassign(ctx context.Context, actor domain.Actor, id, teamID, reason string) (*domain.WorkOrder, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, util.NewValidationError("team_id required", nil)
	}
	return s.Transition(ctx, actor, id, TransitionInput{To: domain.StatusAssigned, TeamID: teamID, Reason: reason})
}

// History returns the update log of a work order, oldest first.
func (s *WorkOrderService) History(ctx context.Context, id string, limit, offset int) ([]domain.UpdateLog, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if s.recorder.logs == nil {
		return []domain.UpdateLog{}, nil
	}
	entries, err := s.recorder.logs.ListByWorkOrder(ctx, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list update log: %w", err)
	}
	return entries, nil
}

func (s *WorkOrderService) load(ctx context.Context, id string) (*domain.WorkOrder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, util.NewNotFound("work order", map[string]any{"id": id})
	}
	wo, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("work order", map[string]any{"id": id})
		}
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return wo, nil
}

func (s *WorkOrderService) requireActiveTeam(ctx context.Context, teamID string) error {
	if _, err := uuid.Parse(teamID); err != nil {
		return util.NewValidationError("unknown team", map[string]any{"team_id": teamID})
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewValidationError("unknown team", map[string]any{"team_id": teamID})
		}
		return fmt.Errorf("get team: %w", err)
	}
	if !team.IsActive {
		return util.NewValidationError("team inactive", map[string]any{"team_id": teamID})
	}
	return nil
}

func generateWorkOrderCode() string {
	return "WO-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func validPriority(p domain.WorkOrderPriority) bool {
	switch p {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityCritical:
		return true
	}
	return false
}

func validUrgency(u domain.WorkOrderUrgency) bool {
	switch u {
	case domain.UrgencyNormal, domain.UrgencyUrgent, domain.UrgencyEmergency:
		return true
	}
	return false
}
