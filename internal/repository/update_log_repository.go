package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// UpdateLogRepository stores the append-only audit trail of work orders.
type UpdateLogRepository interface {
	Append(ctx context.Context, entry *domain.UpdateLog) error
	ListByWorkOrder(ctx context.Context, workOrderID string, limit, offset int) ([]domain.UpdateLog, error)
}

type updateLogRepository struct {
	pool *pgxpool.Pool
}

// NewUpdateLogRepository builds repository.
func NewUpdateLogRepository(pool *pgxpool.Pool) UpdateLogRepository {
	return &updateLogRepository{pool: pool}
}

func (r *updateLogRepository) Append(ctx context.Context, entry *domain.UpdateLog) error {
	const query = `
        INSERT INTO work_order_updates (work_order_id, actor_id, actor_roles, action, from_status, to_status, reason, metadata, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	roles := entry.ActorRoles
	if roles == nil {
		roles = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		entry.WorkOrderID,
		entry.ActorID,
		roles,
		entry.Action,
		entry.FromStatus,
		entry.ToStatus,
		entry.Reason,
		metadata,
		entry.CreatedAt,
	).Scan(&entry.ID)
}

func (r *updateLogRepository) ListByWorkOrder(ctx context.Context, workOrderID string, limit, offset int) ([]domain.UpdateLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, work_order_id, actor_id, actor_roles, action, from_status, to_status, reason, metadata, created_at
        FROM work_order_updates WHERE work_order_id=$1 ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, workOrderID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UpdateLog
	for rows.Next() {
		var entry domain.UpdateLog
		if err := rows.Scan(
			&entry.ID,
			&entry.WorkOrderID,
			&entry.ActorID,
			&entry.ActorRoles,
			&entry.Action,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Reason,
			&entry.Metadata,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
