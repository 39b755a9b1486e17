package workflow

import (
	"errors"
	"fmt"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// ErrUnknownStatus marks a status outside the closed enumeration. The engine
// panics with it because such a value means corrupted input, not a rule violation.
var ErrUnknownStatus = errors.New("unknown work order status")

// Reason classifies why a transition was refused.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNoSuchEdge          Reason = "no_such_edge"
	ReasonWrongRole           Reason = "wrong_role"
	ReasonMissingPrecondition Reason = "missing_precondition"
	ReasonAlreadyTerminal     Reason = "already_terminal"
)

// Result is the outcome of a legality check.
type Result struct {
	Valid     bool
	Reason    Reason
	Message   string
	FastTrack bool
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(reason Reason, format string, args ...any) Result {
	return Result{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Err converts an invalid result into a *TransitionError; valid results yield nil.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &TransitionError{Reason: r.Reason, Message: r.Message}
}

// TransitionError is the error form of a refused transition.
type TransitionError struct {
	Reason  Reason
	Message string
}

func (e *TransitionError) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// ReasonOf extracts the refusal reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Reason, true
	}
	return ReasonNone, false
}

func mustKnow(statuses ...domain.WorkOrderStatus) {
	for _, s := range statuses {
		if !s.Valid() {
			panic(fmt.Errorf("%w: %q", ErrUnknownStatus, string(s)))
		}
	}
}
