package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/medops-hub/workorder-service/internal/workflow"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

var transitionCodes = map[workflow.Reason]struct {
	code   string
	status int
}{
	workflow.ReasonNoSuchEdge:          {"NO_SUCH_EDGE", http.StatusConflict},
	workflow.ReasonWrongRole:           {"WRONG_ROLE", http.StatusForbidden},
	workflow.ReasonMissingPrecondition: {"MISSING_PRECONDITION", http.StatusUnprocessableEntity},
	workflow.ReasonAlreadyTerminal:     {"ALREADY_TERMINAL", http.StatusConflict},
}

// NewTransitionError converts a refused workflow result into a DomainError.
func NewTransitionError(res workflow.Result, details map[string]any) error {
	mapped, ok := transitionCodes[res.Reason]
	if !ok {
		return NewInternalError(fmt.Errorf("transition refused without reason: %s", res.Message))
	}
	return &DomainError{
		Code:       mapped.code,
		Message:    res.Message,
		HTTPStatus: mapped.status,
		Details:    details,
		Err:        res.Err(),
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var te *workflow.TransitionError
	if errors.As(err, &te) {
		var de *DomainError
		errors.As(NewTransitionError(workflow.Result{Reason: te.Reason, Message: te.Message}, nil), &de)
		return de
	}
	if errors.Is(err, pgx.ErrNoRows) {
		var de *DomainError
		errors.As(NewNotFound("resource", nil), &de)
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
