package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/events"
	"github.com/medops-hub/workorder-service/internal/repository"
)

// memWorkOrders is an in-memory WorkOrderRepository with the same conditional
// write semantics as the Postgres one.
type memWorkOrders struct {
	mu     sync.Mutex
	rows   map[string]domain.WorkOrder
	stale  map[string]domain.WorkOrder
	writes int
	// beforeUpdate runs under the lock ahead of each conditional write.
	beforeUpdate func(rows map[string]domain.WorkOrder, id string)
}

func newMemWorkOrders() *memWorkOrders {
	return &memWorkOrders{rows: map[string]domain.WorkOrder{}, stale: map[string]domain.WorkOrder{}}
}

func (m *memWorkOrders) put(wo domain.WorkOrder) domain.WorkOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wo.ID == "" {
		wo.ID = uuid.NewString()
	}
	m.rows[wo.ID] = wo.Clone()
	return wo
}

func (m *memWorkOrders) row(id string) domain.WorkOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].Clone()
}

// serveStale makes the next GetByID for wo.ID return wo instead of the stored row.
func (m *memWorkOrders) serveStale(wo domain.WorkOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale[wo.ID] = wo.Clone()
}

func (m *memWorkOrders) Create(_ context.Context, wo *domain.WorkOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	wo.ID = uuid.NewString()
	m.rows[wo.ID] = wo.Clone()
	return nil
}

func (m *memWorkOrders) GetByID(_ context.Context, id string) (*domain.WorkOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wo, ok := m.stale[id]; ok {
		delete(m.stale, id)
		return &wo, nil
	}
	wo, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := wo.Clone()
	return &out, nil
}

func (m *memWorkOrders) UpdateIfStatus(_ context.Context, wo *domain.WorkOrder, expected domain.WorkOrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeUpdate != nil {
		m.beforeUpdate(m.rows, wo.ID)
	}
	current, ok := m.rows[wo.ID]
	if !ok || current.Status != expected {
		return repository.ErrConflict
	}
	m.rows[wo.ID] = wo.Clone()
	m.writes++
	return nil
}

func (m *memWorkOrders) ListWithFilter(_ context.Context, filter repository.WorkOrderFilter) ([]domain.WorkOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.WorkOrder
	for _, wo := range m.rows {
		if filter.ReportedBy != nil && wo.ReportedBy != *filter.ReportedBy {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, wo.Status) {
			continue
		}
		out = append(out, wo.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memWorkOrders) ListAutoCloseCandidates(_ context.Context, cutoff time.Time, limit int) ([]domain.WorkOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.WorkOrder
	for _, wo := range m.rows {
		if wo.Status == domain.StatusPendingReporterClosure && wo.PendingClosureSince != nil && !wo.PendingClosureSince.After(cutoff) {
			out = append(out, wo.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PendingClosureSince.Before(*out[j].PendingClosureSince) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func containsStatus(list []domain.WorkOrderStatus, s domain.WorkOrderStatus) bool {
	for _, c := range list {
		if c == s {
			return true
		}
	}
	return false
}

type memUpdateLogs struct {
	mu      sync.Mutex
	entries []domain.UpdateLog
}

func (m *memUpdateLogs) Append(ctx context.Context, entry *domain.UpdateLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = uuid.NewString()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memUpdateLogs) ListByWorkOrder(_ context.Context, workOrderID string, limit, offset int) ([]domain.UpdateLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.UpdateLog
	for _, e := range m.entries {
		if e.WorkOrderID == workOrderID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return []domain.UpdateLog{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memTeams struct {
	rows map[string]domain.Team
}

func (m *memTeams) Create(_ context.Context, team *domain.Team) error {
	team.ID = uuid.NewString()
	m.rows[team.ID] = *team
	return nil
}

func (m *memTeams) Update(_ context.Context, team *domain.Team) error {
	if _, ok := m.rows[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.rows[team.ID] = *team
	return nil
}

func (m *memTeams) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &team, nil
}

func (m *memTeams) ListActive(context.Context) ([]domain.Team, error) {
	var out []domain.Team
	for _, t := range m.rows {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, e events.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event(nil), d.events...)
}
