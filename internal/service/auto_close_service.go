package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/events"
	"github.com/medops-hub/workorder-service/internal/observability"
	"github.com/medops-hub/workorder-service/internal/repository"
	"github.com/medops-hub/workorder-service/internal/workflow"
)

// SweepResult summarizes one auto-close pass.
type SweepResult struct {
	Scanned   int `json:"scanned"`
	Closed    int `json:"closed"`
	Conflicts int `json:"conflicts"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// AutoCloseService closes work orders whose reporter closure window has elapsed.
type AutoCloseService struct {
	orders    repository.WorkOrderRepository
	engine    workflow.Engine
	recorder  *transitionRecorder
	logger    *zap.Logger
	metrics   *observability.Metrics
	batchSize int
	Now       func() time.Time
}

// AutoCloseDependencies bundles collaborators for the sweep.
type AutoCloseDependencies struct {
	WorkOrderRepo repository.WorkOrderRepository
	UpdateLogRepo repository.UpdateLogRepository
	Engine        workflow.Engine
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	BatchSize     int
}

// NewAutoCloseService constructs the service.
func NewAutoCloseService(deps AutoCloseDependencies) *AutoCloseService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	batch := deps.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return &AutoCloseService{
		orders:    deps.WorkOrderRepo,
		engine:    deps.Engine,
		recorder:  &transitionRecorder{logs: deps.UpdateLogRepo, dispatcher: deps.Dispatcher, logger: logger},
		logger:    logger,
		metrics:   deps.Metrics,
		batchSize: batch,
		Now:       time.Now,
	}
}

// Sweep auto-closes one batch of eligible work orders as the system actor.
// A work order that changed since it was listed loses the conditional write and
// is counted as a conflict; it is not retried. Running Sweep twice is harmless.
func (s *AutoCloseService) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := s.Now().UTC()
	candidates, err := s.orders.ListAutoCloseCandidates(ctx, s.engine.AutoCloseCutoff(now), s.batchSize)
	if err != nil {
		return result, fmt.Errorf("list auto-close candidates: %w", err)
	}
	system := domain.SystemActor()

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Scanned++
		snapshot := &candidates[i]
		next, res := s.engine.Apply(*snapshot, workflow.TransitionRequest{
			To:    domain.StatusAutoClosed,
			Actor: system,
			At:    now,
		})
		if !res.Valid {
			result.Skipped++
			s.logger.Debug("auto-close skipped",
				zap.String("work_order_id", snapshot.ID),
				zap.String("reason", string(res.Reason)),
				zap.String("message", res.Message))
			continue
		}
		if err := s.orders.UpdateIfStatus(ctx, &next, snapshot.Status); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				result.Conflicts++
				s.metrics.RecordTransition(string(snapshot.Status), string(domain.StatusAutoClosed), "conflict")
				continue
			}
			result.Failed++
			s.logger.Error("auto-close write failed", zap.String("work_order_id", snapshot.ID), zap.Error(err))
			continue
		}
		result.Closed++
		s.metrics.RecordTransition(string(snapshot.Status), string(domain.StatusAutoClosed), "applied")
		s.recorder.recordTransition(ctx, system, snapshot, &next, "", false)
	}

	s.metrics.RecordSweep(result.Closed, result.Conflicts, result.Failed)
	if result.Scanned > 0 {
		s.logger.Info("auto-close sweep finished",
			zap.Int("scanned", result.Scanned),
			zap.Int("closed", result.Closed),
			zap.Int("conflicts", result.Conflicts),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}
