package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// ErrConflict is returned when a conditional update finds the row no longer in
// the expected status.
var ErrConflict = errors.New("work order changed concurrently")

// WorkOrderFilter captures list parameters.
type WorkOrderFilter struct {
	Statuses   []domain.WorkOrderStatus
	Priorities []domain.WorkOrderPriority
	TeamID     *string
	ReportedBy *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// WorkOrderRepository encapsulates work order persistence.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *domain.WorkOrder) error
	GetByID(ctx context.Context, id string) (*domain.WorkOrder, error)
	// UpdateIfStatus writes wo only while the stored status still equals expected.
	UpdateIfStatus(ctx context.Context, wo *domain.WorkOrder, expected domain.WorkOrderStatus) error
	ListWithFilter(ctx context.Context, filter WorkOrderFilter) ([]domain.WorkOrder, error)
	ListAutoCloseCandidates(ctx context.Context, cutoff time.Time, limit int) ([]domain.WorkOrder, error)
}

const workOrderColumns = `id, code, title, description, location, asset_id, priority, urgency, status,
    reported_by, reported_at, assigned_team, assigned_at, assigned_by,
    technician_completed_at, technician_completed_by, supervisor_approved_at, supervisor_approved_by,
    engineer_approved_at, engineer_approved_by, customer_reviewed_at, customer_reviewed_by, auto_closed_at,
    maintenance_manager_approved_at, maintenance_manager_approved_by, cancelled_at, cancelled_by,
    rejected_at, rejected_by, rejection_stage, rejection_reason, pending_closure_since,
    reassignment_count, last_reassigned_at, last_reassigned_by, reassignment_reason, fast_tracked,
    created_at, updated_at`

type workOrderRepository struct {
	pool *pgxpool.Pool
}

// NewWorkOrderRepository instantiates repository.
func NewWorkOrderRepository(pool *pgxpool.Pool) WorkOrderRepository {
	return &workOrderRepository{pool: pool}
}

func (r *workOrderRepository) Create(ctx context.Context, wo *domain.WorkOrder) error {
	const query = `
        INSERT INTO work_orders (code, title, description, location, asset_id, priority, urgency, status,
            reported_by, reported_at, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		wo.Code,
		wo.Title,
		wo.Description,
		wo.Location,
		wo.AssetID,
		wo.Priority,
		wo.Urgency,
		wo.Status,
		wo.ReportedBy,
		wo.ReportedAt,
		wo.CreatedAt,
	).Scan(&wo.ID)
}

func (r *workOrderRepository) GetByID(ctx context.Context, id string) (*domain.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id=$1`
	return scanWorkOrder(r.pool.QueryRow(ctx, query, id))
}

func (r *workOrderRepository) UpdateIfStatus(ctx context.Context, wo *domain.WorkOrder, expected domain.WorkOrderStatus) error {
	const query = `
        UPDATE work_orders SET status=$1, assigned_team=$2, assigned_at=$3, assigned_by=$4,
            technician_completed_at=$5, technician_completed_by=$6,
            supervisor_approved_at=$7, supervisor_approved_by=$8,
            engineer_approved_at=$9, engineer_approved_by=$10,
            customer_reviewed_at=$11, customer_reviewed_by=$12, auto_closed_at=$13,
            maintenance_manager_approved_at=$14, maintenance_manager_approved_by=$15,
            cancelled_at=$16, cancelled_by=$17,
            rejected_at=$18, rejected_by=$19, rejection_stage=$20, rejection_reason=$21,
            pending_closure_since=$22, reassignment_count=$23, last_reassigned_at=$24,
            last_reassigned_by=$25, reassignment_reason=$26, fast_tracked=$27, updated_at=$28
        WHERE id=$29 AND status=$30`
	cmd, err := r.pool.Exec(ctx, query,
		wo.Status,
		wo.AssignedTeam,
		wo.AssignedAt,
		wo.AssignedBy,
		wo.TechnicianCompletedAt,
		wo.TechnicianCompletedBy,
		wo.SupervisorApprovedAt,
		wo.SupervisorApprovedBy,
		wo.EngineerApprovedAt,
		wo.EngineerApprovedBy,
		wo.CustomerReviewedAt,
		wo.CustomerReviewedBy,
		wo.AutoClosedAt,
		wo.MaintenanceManagerApprovedAt,
		wo.MaintenanceManagerApprovedBy,
		wo.CancelledAt,
		wo.CancelledBy,
		wo.RejectedAt,
		wo.RejectedBy,
		wo.RejectionStage,
		wo.RejectionReason,
		wo.PendingClosureSince,
		wo.ReassignmentCount,
		wo.LastReassignedAt,
		wo.LastReassignedBy,
		wo.ReassignmentReason,
		wo.FastTracked,
		wo.UpdatedAt,
		wo.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *workOrderRepository) ListWithFilter(ctx context.Context, filter WorkOrderFilter) ([]domain.WorkOrder, error) {
	query, args := buildWorkOrderQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkOrders(rows)
}

func (r *workOrderRepository) ListAutoCloseCandidates(ctx context.Context, cutoff time.Time, limit int) ([]domain.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + `
        FROM work_orders
        WHERE status=$1 AND pending_closure_since IS NOT NULL AND pending_closure_since <= $2
        ORDER BY pending_closure_since ASC LIMIT $3`
	rows, err := r.pool.Query(ctx, query, domain.StatusPendingReporterClosure, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkOrders(rows)
}

func buildWorkOrderQuery(filter WorkOrderFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("assigned_team=$%d", len(args)))
	}
	if filter.ReportedBy != nil {
		args = append(args, *filter.ReportedBy)
		clauses = append(clauses, fmt.Sprintf("reported_by=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(location) LIKE %s OR LOWER(code) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM work_orders WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		workOrderColumns, strings.Join(clauses, " AND "), limit, offset)
	return query, args
}

func scanWorkOrder(row pgx.Row) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	if err := row.Scan(
		&wo.ID,
		&wo.Code,
		&wo.Title,
		&wo.Description,
		&wo.Location,
		&wo.AssetID,
		&wo.Priority,
		&wo.Urgency,
		&wo.Status,
		&wo.ReportedBy,
		&wo.ReportedAt,
		&wo.AssignedTeam,
		&wo.AssignedAt,
		&wo.AssignedBy,
		&wo.TechnicianCompletedAt,
		&wo.TechnicianCompletedBy,
		&wo.SupervisorApprovedAt,
		&wo.SupervisorApprovedBy,
		&wo.EngineerApprovedAt,
		&wo.EngineerApprovedBy,
		&wo.CustomerReviewedAt,
		&wo.CustomerReviewedBy,
		&wo.AutoClosedAt,
		&wo.MaintenanceManagerApprovedAt,
		&wo.MaintenanceManagerApprovedBy,
		&wo.CancelledAt,
		&wo.CancelledBy,
		&wo.RejectedAt,
		&wo.RejectedBy,
		&wo.RejectionStage,
		&wo.RejectionReason,
		&wo.PendingClosureSince,
		&wo.ReassignmentCount,
		&wo.LastReassignedAt,
		&wo.LastReassignedBy,
		&wo.ReassignmentReason,
		&wo.FastTracked,
		&wo.CreatedAt,
		&wo.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &wo, nil
}

func scanWorkOrders(rows pgx.Rows) ([]domain.WorkOrder, error) {
	var result []domain.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *wo)
	}
	return result, rows.Err()
}
