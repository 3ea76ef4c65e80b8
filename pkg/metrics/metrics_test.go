package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRegisters(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector()
	require.NoError(t, c.Register(registry))

	// Double registration must fail.
	assert.Error(t, c.Register(registry))
}

func TestCollectorRecords(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector()
	require.NoError(t, c.Register(registry))

	c.RecordProblem(120, 450)
	c.ObserveSolve("exhausted", 25*time.Millisecond)
	c.ObserveSolve("exhausted", 10*time.Millisecond)
	c.ObserveSolve("limit-reached", time.Millisecond)
	c.RecordPredecessors(3)

	assert.Equal(t, float64(120), testutil.ToFloat64(c.CNFVariables))
	assert.Equal(t, float64(450), testutil.ToFloat64(c.CNFClauses))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.SolvesTotal.WithLabelValues("exhausted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.SolvesTotal.WithLabelValues("limit-reached")))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.PredecessorsTotal))

	count := testutil.CollectAndCount(c.SolveDuration)
	assert.Equal(t, 1, count)
}
