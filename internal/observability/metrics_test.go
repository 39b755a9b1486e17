package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordTransition("pending", "assigned", "applied")
		}()
	}
	wg.Wait()
	m.RecordTransition("pending", "completed", "no_such_edge")
	m.RecordRequest("/work-orders", "GET", 200, time.Millisecond)
	m.RecordError("/work-orders/:id", "GET", "NOT_FOUND")
	m.RecordSweep(3, 1, 0)

	snap := m.Snapshot()
	assert.Equal(t, []Counter{
		{Key: "pending|assigned|applied", Value: 10},
		{Key: "pending|completed|no_such_edge", Value: 1},
	}, snap.Transitions)
	assert.Equal(t, []Counter{{Key: "/work-orders|GET|200", Value: 1}}, snap.Requests)
	assert.Equal(t, []Counter{{Key: "/work-orders/:id|GET|NOT_FOUND", Value: 1}}, snap.Errors)
	assert.Contains(t, snap.Sweeps, Counter{Key: "closed", Value: 3})
	assert.Contains(t, snap.Sweeps, Counter{Key: "runs", Value: 1})
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTransition("a", "b", "c")
		m.RecordSweep(1, 1, 1)
		_ = m.Snapshot()
	})
}
