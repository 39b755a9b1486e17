package workflow

import (
	"time"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// AutoCloseEvaluation reports where a work order stands against the closure window.
type AutoCloseEvaluation struct {
	Applicable      bool
	Deadline        time.Time
	ShouldAutoClose bool
	// HoursRemaining is advisory, for countdown display only.
	HoursRemaining int
}

// EvaluateAutoClose checks the reporter closure window at now. The deadline is
// inclusive: a work order is eligible at exactly window after closure started.
func (e Engine) EvaluateAutoClose(wo *domain.WorkOrder, now time.Time) AutoCloseEvaluation {
	if wo == nil || wo.Status != domain.StatusPendingReporterClosure || wo.PendingClosureSince == nil {
		return AutoCloseEvaluation{}
	}
	deadline := wo.PendingClosureSince.Add(e.policy.AutoCloseWindow)
	eval := AutoCloseEvaluation{
		Applicable:      true,
		Deadline:        deadline,
		ShouldAutoClose: !now.Before(deadline),
	}
	if remaining := deadline.Sub(now); remaining > 0 {
		eval.HoursRemaining = int(remaining / time.Hour)
	}
	return eval
}

// AutoCloseCutoff returns the latest closure start that is already eligible at now.
func (e Engine) AutoCloseCutoff(now time.Time) time.Time {
	return now.Add(-e.policy.AutoCloseWindow)
}
