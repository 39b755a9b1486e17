package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/events"
	"github.com/medops-hub/workorder-service/internal/observability"
	"github.com/medops-hub/workorder-service/internal/workflow"
)

func awaitingClosure(code string, since time.Time) domain.WorkOrder {
	team := "team-hvac"
	at := since.Add(-3 * time.Hour)
	return domain.WorkOrder{
		Code:                  code,
		Title:                 "Broken lamp",
		Status:                domain.StatusPendingReporterClosure,
		ReportedBy:            "u-reporter",
		ReportedAt:            at,
		AssignedTeam:          &team,
		AssignedAt:            &at,
		TechnicianCompletedAt: &at,
		SupervisorApprovedAt:  &at,
		EngineerApprovedAt:    &since,
		PendingClosureSince:   &since,
	}
}

func newSweeper(orders *memWorkOrders, logs *memUpdateLogs, dispatcher events.Dispatcher, now time.Time) *AutoCloseService {
	svc := NewAutoCloseService(AutoCloseDependencies{
		WorkOrderRepo: orders,
		UpdateLogRepo: logs,
		Engine:        workflow.New(workflow.DefaultPolicy()),
		Dispatcher:    dispatcher,
		Metrics:       observability.NewMetrics(),
		BatchSize:     10,
	})
	svc.Now = func() time.Time { return now }
	return svc
}

func TestSweepClosesOnlyElapsedWindows(t *testing.T) {
	now := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	orders := newMemWorkOrders()
	logs := &memUpdateLogs{}
	dispatcher := &recordingDispatcher{}

	late := orders.put(awaitingClosure("WO-LATE", now.Add(-25*time.Hour)))
	exact := orders.put(awaitingClosure("WO-EXACT", now.Add(-24*time.Hour)))
	fresh := orders.put(awaitingClosure("WO-FRESH", now.Add(-23*time.Hour)))

	svc := newSweeper(orders, logs, dispatcher, now)
	res, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Scanned: 2, Closed: 2}, res)

	for _, id := range []string{late.ID, exact.ID} {
		row := orders.row(id)
		assert.Equal(t, domain.StatusAutoClosed, row.Status)
		assert.Equal(t, now, *row.AutoClosedAt)
		assert.Nil(t, row.PendingClosureSince)
		assert.NoError(t, workflow.CheckInvariants(&row))
	}
	assert.Equal(t, domain.StatusPendingReporterClosure, orders.row(fresh.ID).Status)

	require.Len(t, logs.entries, 2)
	assert.Equal(t, "system", logs.entries[0].ActorID)
	assert.Equal(t, string(workflow.ActionAutoClose), logs.entries[0].Action)
	require.Len(t, dispatcher.published(), 2)
	payload := dispatcher.published()[0].Payload.(events.WorkOrderTransitionedPayload)
	assert.Equal(t, domain.StatusAutoClosed, payload.To)

	again, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, again)
}

func TestSweepDropsConflicts(t *testing.T) {
	now := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	orders := newMemWorkOrders()
	wo := orders.put(awaitingClosure("WO-RACE", now.Add(-30*time.Hour)))

	// The reporter confirms between the candidate read and the write.
	orders.beforeUpdate = func(rows map[string]domain.WorkOrder, id string) {
		row := rows[id]
		row.Status = domain.StatusCompleted
		row.PendingClosureSince = nil
		rows[id] = row
	}

	logs := &memUpdateLogs{}
	res, err := newSweeper(orders, logs, nil, now).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Scanned: 1, Conflicts: 1}, res)
	assert.Equal(t, domain.StatusCompleted, orders.row(wo.ID).Status)
	assert.Empty(t, logs.entries)
}

func TestSweepHonoursBatchSize(t *testing.T) {
	now := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	orders := newMemWorkOrders()
	for i := 0; i < 15; i++ {
		orders.put(awaitingClosure("WO-BATCH", now.Add(-time.Duration(30+i)*time.Hour)))
	}
	svc := newSweeper(orders, &memUpdateLogs{}, nil, now)

	first, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, first.Closed)
	second, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, second.Closed)
}
