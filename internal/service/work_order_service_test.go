package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/events"
	"github.com/medops-hub/workorder-service/internal/observability"
	"github.com/medops-hub/workorder-service/internal/workflow"
	"github.com/medops-hub/workorder-service/pkg/util"
)

var now0 = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc        *WorkOrderService
	orders     *memWorkOrders
	logs       *memUpdateLogs
	teams      *memTeams
	dispatcher *recordingDispatcher
	metrics    *observability.Metrics
	clock      time.Time
	hvac       string
	retired    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		orders:     newMemWorkOrders(),
		logs:       &memUpdateLogs{},
		teams:      &memTeams{rows: map[string]domain.Team{}},
		dispatcher: &recordingDispatcher{},
		metrics:    observability.NewMetrics(),
		clock:      now0,
	}
	hvac := domain.Team{Name: "HVAC", Specialty: "hvac", IsActive: true}
	retired := domain.Team{Name: "Old plumbing", IsActive: false}
	require.NoError(t, h.teams.Create(context.Background(), &hvac))
	require.NoError(t, h.teams.Create(context.Background(), &retired))
	h.hvac, h.retired = hvac.ID, retired.ID

	h.svc = NewWorkOrderService(WorkOrderDependencies{
		WorkOrderRepo: h.orders,
		UpdateLogRepo: h.logs,
		TeamRepo:      h.teams,
		Engine:        workflow.New(workflow.DefaultPolicy()),
		Dispatcher:    h.dispatcher,
		Metrics:       h.metrics,
	})
	h.svc.Now = func() time.Time { return h.clock }
	return h
}

func (h *harness) tick() { h.clock = h.clock.Add(time.Hour) }

func reporterActor() domain.Actor {
	return domain.Actor{UserID: "u-reporter", Roles: domain.NewRoleSet(domain.RoleReporter)}
}

func supervisorActor() domain.Actor {
	return domain.Actor{UserID: "u-supervisor", Roles: domain.NewRoleSet(domain.RoleSupervisor)}
}

func engineerActor() domain.Actor {
	return domain.Actor{UserID: "u-engineer", Roles: domain.NewRoleSet(domain.RoleEngineer)}
}

func technicianActor(team string) domain.Actor {
	return domain.Actor{UserID: "u-tech", Roles: domain.NewRoleSet(domain.RoleTechnician), TeamIDs: []string{team}}
}

func domainCode(t *testing.T, err error) (string, int) {
	t.Helper()
	var de *util.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code, de.HTTPStatus
}

func (h *harness) report(t *testing.T) *domain.WorkOrder {
	t.Helper()
	wo, err := h.svc.Report(context.Background(), reporterActor(), ReportInput{
		Title:    " AC unit leaking ",
		Location: "Ward 3",
		Priority: domain.PriorityHigh,
	})
	require.NoError(t, err)
	return wo
}

func (h *harness) move(t *testing.T, actor domain.Actor, id string, in TransitionInput) *domain.WorkOrder {
	t.Helper()
	h.tick()
	wo, err := h.svc.Transition(context.Background(), actor, id, in)
	require.NoError(t, err, "to %s", in.To)
	return wo
}

func TestReportCreatesPendingWorkOrder(t *testing.T) {
	h := newHarness(t)
	wo := h.report(t)

	assert.Equal(t, domain.StatusPending, wo.Status)
	assert.Equal(t, "AC unit leaking", wo.Title)
	assert.Equal(t, domain.UrgencyNormal, wo.Urgency)
	assert.Equal(t, "u-reporter", wo.ReportedBy)
	assert.True(t, strings.HasPrefix(wo.Code, "WO-"))
	assert.Len(t, wo.Code, 11)

	history, err := h.svc.History(context.Background(), wo.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ActionReport, history[0].Action)
	assert.Nil(t, history[0].FromStatus)

	published := h.dispatcher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventWorkOrderReported, published[0].Type)
}

func TestReportValidation(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Report(context.Background(), reporterActor(), ReportInput{Title: "  "})
	code, status := domainCode(t, err)
	assert.Equal(t, "VALIDATION_FAILED", code)
	assert.Equal(t, http.StatusBadRequest, status)

	_, err = h.svc.Report(context.Background(), reporterActor(), ReportInput{Title: "Leak", Priority: "urgent!"})
	code, _ = domainCode(t, err)
	assert.Equal(t, "VALIDATION_FAILED", code)

	_, err = h.svc.Report(context.Background(), domain.Actor{}, ReportInput{Title: "Leak"})
	code, _ = domainCode(t, err)
	assert.Equal(t, "UNAUTHORIZED", code)
}

func TestLifecycleThroughService(t *testing.T) {
	h := newHarness(t)
	wo := h.report(t)

	h.move(t, supervisorActor(), wo.ID, TransitionInput{To: domain.StatusAssigned, TeamID: h.hvac})
	h.move(t, technicianActor(h.hvac), wo.ID, TransitionInput{To: domain.StatusInProgress})
	h.move(t, technicianActor(h.hvac), wo.ID, TransitionInput{To: domain.StatusPendingSupervisorApproval})
	h.move(t, supervisorActor(), wo.ID, TransitionInput{To: domain.StatusPendingEngineerReview})
	closing := h.move(t, engineerActor(), wo.ID, TransitionInput{To: domain.StatusPendingReporterClosure})
	require.NotNil(t, closing.PendingClosureSince)
	assert.Equal(t, h.clock, *closing.PendingClosureSince)

	// IsReporter is resolved from the stored work order, not trusted from the caller.
	done := h.move(t, reporterActor(), wo.ID, TransitionInput{To: domain.StatusCompleted})
	assert.Equal(t, domain.StatusCompleted, done.Status)
	assert.Nil(t, done.PendingClosureSince)

	stored := h.orders.row(wo.ID)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	require.NoError(t, workflow.CheckInvariants(&stored))

	history, err := h.svc.History(context.Background(), wo.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 7)
	assert.Equal(t, string(workflow.ActionAssign), history[1].Action)
	assert.Equal(t, h.hvac, history[1].Metadata["team_id"])
	assert.Equal(t, string(workflow.ActionConfirm), history[6].Action)
	assert.Equal(t, domain.StatusPendingReporterClosure, *history[6].FromStatus)
	assert.Len(t, h.dispatcher.published(), 7)
}

func TestCommittedTransitionIsRecordedAfterRequestCancel(t *testing.T) {
	h := newHarness(t)
	wo := h.report(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.orders.beforeUpdate = func(map[string]domain.WorkOrder, string) { cancel() }

	h.tick()
	assigned, err := h.svc.Transition(ctx, supervisorActor(), wo.ID, TransitionInput{To: domain.StatusAssigned, TeamID: h.hvac})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, assigned.Status)

	history, err := h.svc.History(context.Background(), wo.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, string(workflow.ActionAssign), history[1].Action)
	require.Len(t, h.dispatcher.published(), 2)
	assert.Equal(t, events.EventWorkOrderTransitioned, h.dispatcher.published()[1].Type)
}

func TestTransitionRefusalsMapToDomainErrors(t *testing.T) {
	h := newHarness(t)
	wo := h.report(t)

	_, err := h.svc.Transition(context.Background(), reporterActor(), wo.ID, TransitionInput{To: domain.StatusAssigned, TeamID: h.hvac})
	code, status := domainCode(t, err)
	assert.Equal(t, "WRONG_ROLE", code)
	assert.Equal(t, http.StatusForbidden, status)

	_, err = h.svc.Transition(context.Background(), supervisorActor(), wo.ID, TransitionInput{To: domain.StatusCompleted})
	code, status = domainCode(t, err)
	assert.Equal(t, "NO_SUCH_EDGE", code)
	assert.Equal(t, http.StatusConflict, status)

	_, err = h.svc.Transition(context.Background(), supervisorActor(), wo.ID, TransitionInput{To: "archived"})
	code, _ = domainCode(t, err)
	assert.Equal(t, "VALIDATION_FAILED", code)

	assert.Zero(t, h.orders.writes)
	assert.Contains(t, h.metrics.Snapshot().Transitions, observability.Counter{Key: "pending|assigned|wrong_role", Value: 1})
}

func TestAssignmentRequiresActiveTeam(t *testing.T) {
	h := newHarness(t)
	wo := h.report(t)

	for _, team := range []string{h.retired, uuid.NewString(), "not-a-uuid"} {
		_, err := h.svc.Transition(context.Background(), supervisorActor(), wo.ID, TransitionInput{To: domain.StatusAssigned, TeamID: team})
		code, _ := domainCode(t, err)
		assert.Equal(t, "VALIDATION_FAILED", code, team)
	}

	_, err := h.svc.Reassign(context.Background(), supervisorActor(), wo.ID, " ", "")
	code, _ := domainCode(t, err)
	assert.Equal(t, "VALIDATION_FAILED", code)
	assert.Equal(t, domain.StatusPending, h.orders.row(wo.ID).Status)
}

func TestStaleApprovalLosesConditionalWrite(t *testing.T) {
	h := newHarness(t)
	wo := h.report(t)
	h.move(t, supervisorActor(), wo.ID, TransitionInput{To: domain.StatusAssigned, TeamID: h.hvac})
	h.move(t, technicianActor(h.hvac), wo.ID, TransitionInput{To: domain.StatusInProgress})
	h.move(t, technicianActor(h.hvac), wo.ID, TransitionInput{To: domain.StatusPendingSupervisorApproval})
	snapshot := h.orders.row(wo.ID)

	// First supervisor approves.
	h.move(t, supervisorActor(), wo.ID, TransitionInput{To: domain.StatusPendingEngineerReview})

	// Second supervisor acted on the earlier read.
	h.orders.serveStale(snapshot)
	second := domain.Actor{UserID: "u-supervisor-2", Roles: domain.NewRoleSet(domain.RoleSupervisor)}
	_, err := h.svc.Transition(context.Background(), second, wo.ID, TransitionInput{To: domain.StatusPendingEngineerReview})
	code, status := domainCode(t, err)
	assert.Equal(t, "CONFLICT", code)
	assert.Equal(t, http.StatusConflict, status)

	// Re-reading and re-validating rejects the now-stale request.
	_, err = h.svc.Transition(context.Background(), second, wo.ID, TransitionInput{To: domain.StatusPendingEngineerReview})
	code, _ = domainCode(t, err)
	assert.Equal(t, "NO_SUCH_EDGE", code)

	stored := h.orders.row(wo.ID)
	assert.Equal(t, "u-supervisor", *stored.SupervisorApprovedBy)
}

func TestConcurrentApprovalsExactlyOneWins(t *testing.T) {
	h := newHarness(t)
	wo := h.report(t)
	h.move(t, supervisorActor(), wo.ID, TransitionInput{To: domain.StatusAssigned, TeamID: h.hvac})
	h.move(t, technicianActor(h.hvac), wo.ID, TransitionInput{To: domain.StatusInProgress})
	h.move(t, technicianActor(h.hvac), wo.ID, TransitionInput{To: domain.StatusPendingSupervisorApproval})
	writesBefore := h.orders.writes

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.Transition(context.Background(), supervisorActor(), wo.ID, TransitionInput{To: domain.StatusPendingEngineerReview})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		code, _ := domainCode(t, err)
		assert.Contains(t, []string{"CONFLICT", "NO_SUCH_EDGE"}, code)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, writesBefore+1, h.orders.writes)
}

func TestRejectionThenReassignment(t *testing.T) {
	h := newHarness(t)
	wo := h.report(t)
	h.move(t, supervisorActor(), wo.ID, TransitionInput{To: domain.StatusAssigned, TeamID: h.hvac})
	rejected := h.move(t, technicianActor(h.hvac), wo.ID, TransitionInput{
		To: domain.StatusRejectedByTechnician, Reason: "needs an electrician",
	})
	require.NotNil(t, rejected.RejectedAt)

	h.tick()
	reassigned, err := h.svc.Reassign(context.Background(), supervisorActor(), wo.ID, h.hvac, "spare parts arrived")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, reassigned.Status)
	assert.Equal(t, 1, reassigned.ReassignmentCount)
	assert.Nil(t, reassigned.RejectedAt)
	assert.Nil(t, reassigned.RejectionReason)
	assert.Equal(t, "spare parts arrived", *reassigned.ReassignmentReason)

	history, err := h.svc.History(context.Background(), wo.ID, 0, 0)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, string(workflow.ActionReassign), last.Action)
	assert.Equal(t, 1, last.Metadata["reassignment_count"])
}

func TestGetIncludesActionsForCaller(t *testing.T) {
	h := newHarness(t)
	wo := h.report(t)

	view, err := h.svc.Get(context.Background(), reporterActor(), wo.ID)
	require.NoError(t, err)
	require.Len(t, view.State.Actions, 1)
	assert.Equal(t, workflow.ActionCancel, view.State.Actions[0].Name)
	assert.Equal(t, "supervisor", view.State.AwaitingRole)

	view, err = h.svc.Get(context.Background(), supervisorActor(), wo.ID)
	require.NoError(t, err)
	require.Len(t, view.State.Actions, 1)
	assert.Equal(t, domain.StatusAssigned, view.State.Actions[0].Target)
	assert.True(t, view.State.Actions[0].NeedsTeam)
}

func TestUnknownWorkOrderIsNotFound(t *testing.T) {
	h := newHarness(t)
	for _, id := range []string{uuid.NewString(), "WO-123"} {
		_, err := h.svc.Get(context.Background(), supervisorActor(), id)
		code, status := domainCode(t, err)
		assert.Equal(t, "NOT_FOUND", code)
		assert.Equal(t, http.StatusNotFound, status)
	}
}

func TestListFiltersByReporter(t *testing.T) {
	h := newHarness(t)
	h.report(t)
	h.report(t)
	other := "someone-else"
	all, err := h.svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	none, err := h.svc.List(context.Background(), ListFilter{ReportedBy: &other})
	require.NoError(t, err)
	assert.Empty(t, none)
}
