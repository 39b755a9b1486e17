package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medops-hub/workorder-service/internal/workflow"
)

func TestToDomainErrorTransitionReasons(t *testing.T) {
	tests := []struct {
		reason workflow.Reason
		code   string
		status int
	}{
		{workflow.ReasonNoSuchEdge, "NO_SUCH_EDGE", http.StatusConflict},
		{workflow.ReasonWrongRole, "WRONG_ROLE", http.StatusForbidden},
		{workflow.ReasonMissingPrecondition, "MISSING_PRECONDITION", http.StatusUnprocessableEntity},
		{workflow.ReasonAlreadyTerminal, "ALREADY_TERMINAL", http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			err := fmt.Errorf("transition: %w", &workflow.TransitionError{Reason: tt.reason, Message: "nope"})
			de := ToDomainError(err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
			assert.Equal(t, "nope", de.Message)
		})
	}
}

func TestToDomainErrorFallbacks(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	nf := ToDomainError(fmt.Errorf("get: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", nf.Code)
	assert.Equal(t, http.StatusNotFound, nf.HTTPStatus)

	conflict := NewConflict("stale", nil)
	assert.Same(t, conflict, error(ToDomainError(fmt.Errorf("wrap: %w", conflict))))

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", internal.Code)
	assert.Equal(t, "internal server error: boom", internal.Error())
}
