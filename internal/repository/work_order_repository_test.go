package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medops-hub/workorder-service/internal/domain"
)

func TestBuildWorkOrderQueryDefaults(t *testing.T) {
	query, args := buildWorkOrderQuery(WorkOrderFilter{})
	assert.Empty(t, args)
	assert.Contains(t, query, "WHERE 1=1 ORDER BY updated_at DESC LIMIT 20 OFFSET 0")
}

func TestBuildWorkOrderQueryFilters(t *testing.T) {
	team := "team-1"
	reporter := "user-1"
	search := "  Ward 3 "
	query, args := buildWorkOrderQuery(WorkOrderFilter{
		Statuses:   []domain.WorkOrderStatus{domain.StatusAssigned, domain.StatusInProgress},
		Priorities: []domain.WorkOrderPriority{domain.PriorityCritical},
		TeamID:     &team,
		ReportedBy: &reporter,
		SearchTerm: &search,
		Limit:      5,
		Offset:     -3,
	})

	assert.Equal(t, []any{
		domain.StatusAssigned, domain.StatusInProgress, domain.PriorityCritical, team, reporter, "%ward 3%",
	}, args)
	assert.Contains(t, query, "status IN ($1,$2)")
	assert.Contains(t, query, "priority IN ($3)")
	assert.Contains(t, query, "assigned_team=$4")
	assert.Contains(t, query, "reported_by=$5")
	assert.Contains(t, query, "LOWER(title) LIKE $6")
	assert.True(t, strings.HasSuffix(query, "LIMIT 5 OFFSET 0"))
}
