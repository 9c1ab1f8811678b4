package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	first := NewMetrics()
	second := NewMetrics()
	require.NotSame(t, first.Registry, second.Registry)

	first.IncrUnit("memory", "commit")
	assert.Equal(t, 1.0, testutil.ToFloat64(first.unitsTotal.WithLabelValues("memory", "commit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.unitsTotal.WithLabelValues("memory", "commit")))
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrUnitRetry()
	m.IncrUnitRetry()
	m.IncrCompensation("failed")
	m.AddBills("paid", 3)
	m.AddBills("failed", 0)
	m.RecordRequest("/api/v1/transactions", "POST", "201", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.unitRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compensations.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.billsProcessed.WithLabelValues("paid")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}
