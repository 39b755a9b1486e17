package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// CheckInvariants reports every data-model invariant wo violates.
func CheckInvariants(wo *domain.WorkOrder) error {
	if !wo.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(wo.Status))
	}
	var errs []error
	if wo.PendingClosureSince != nil && wo.Status != domain.StatusPendingReporterClosure {
		errs = append(errs, fmt.Errorf("pending_closure_since set while status is %s", wo.Status))
	}
	if wo.RejectedAt != nil && !wo.Status.Rejected() {
		errs = append(errs, fmt.Errorf("rejected_at set while status is %s", wo.Status))
	}
	if wo.Status.Rejected() && wo.RejectedAt == nil {
		errs = append(errs, fmt.Errorf("status %s without rejected_at", wo.Status))
	}
	if wo.Status == domain.StatusPendingReporterClosure && wo.PendingClosureSince == nil {
		errs = append(errs, errors.New("pending_reporter_closure without pending_closure_since"))
	}
	if !wo.FastTracked {
		errs = append(errs, checkStageOrder(wo)...)
	}
	return errors.Join(errs...)
}

func checkStageOrder(wo *domain.WorkOrder) []error {
	chain := []struct {
		name string
		at   *time.Time
	}{
		{"assigned_at", wo.AssignedAt},
		{"technician_completed_at", wo.TechnicianCompletedAt},
		{"supervisor_approved_at", wo.SupervisorApprovedAt},
		{"engineer_approved_at", wo.EngineerApprovedAt},
	}
	var errs []error
	for i := 1; i < len(chain); i++ {
		if chain[i].at != nil && chain[i-1].at == nil {
			errs = append(errs, fmt.Errorf("%s set without %s", chain[i].name, chain[i-1].name))
		}
	}
	closed := wo.CustomerReviewedAt != nil || wo.AutoClosedAt != nil
	if closed && wo.EngineerApprovedAt == nil {
		errs = append(errs, errors.New("closure recorded without engineer_approved_at"))
	}
	if wo.MaintenanceManagerApprovedAt != nil && wo.CustomerReviewedAt == nil {
		errs = append(errs, errors.New("maintenance_manager_approved_at set without customer_reviewed_at"))
	}
	return errs
}
