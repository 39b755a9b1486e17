package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/events"
	"github.com/medops-hub/workorder-service/internal/repository"
	"github.com/medops-hub/workorder-service/internal/workflow"
)

// transitionRecorder writes the audit entry and emits the event for an applied
// transition. Both happen after the state change has been committed, so
// failures are logged rather than returned.
type transitionRecorder struct {
	logs       repository.UpdateLogRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (r *transitionRecorder) recordTransition(ctx context.Context, actor domain.Actor, before, after *domain.WorkOrder, reason string, fastTrack bool) {
	action, _ := workflow.ActionFor(before.Status, after.Status)
	from := before.Status

	metadata := map[string]any{}
	if after.AssignedTeam != nil && after.Status == domain.StatusAssigned {
		metadata["team_id"] = *after.AssignedTeam
	}
	if after.ReassignmentCount != before.ReassignmentCount {
		metadata["reassignment_count"] = after.ReassignmentCount
	}
	if fastTrack {
		metadata["fast_tracked"] = true
	}
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}

	r.appendLog(ctx, &domain.UpdateLog{
		WorkOrderID: after.ID,
		ActorID:     actor.UserID,
		ActorRoles:  actor.Roles.Strings(),
		Action:      string(action),
		FromStatus:  &from,
		ToStatus:    after.Status,
		Reason:      reasonPtr,
		Metadata:    metadata,
		CreatedAt:   after.UpdatedAt,
	})
	r.publish(ctx, events.Event{
		Type:        events.EventWorkOrderTransitioned,
		WorkOrderID: after.ID,
		Actor:       events.ActorFrom(actor),
		Timestamp:   after.UpdatedAt,
		Payload: events.WorkOrderTransitionedPayload{
			Code:         after.Code,
			Title:        after.Title,
			From:         from,
			To:           after.Status,
			Action:       string(action),
			Reason:       reason,
			AssignedTeam: after.AssignedTeam,
			ReportedBy:   after.ReportedBy,
		},
	})
}

func (r *transitionRecorder) appendLog(ctx context.Context, entry *domain.UpdateLog) {
	if r.logs == nil {
		return
	}
	if err := r.logs.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Error("append update log",
			zap.String("work_order_id", entry.WorkOrderID),
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

func (r *transitionRecorder) publish(ctx context.Context, event events.Event) {
	if r.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := r.dispatcher.Publish(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Warn("event not published",
			zap.String("event_type", string(event.Type)),
			zap.String("work_order_id", event.WorkOrderID),
			zap.Error(err))
	}
}
