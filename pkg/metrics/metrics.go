package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// StatusLabel partitions solve observations by how the
	// enumeration ended.
	StatusLabel = "status"
)

// Collector bundles the solver's prometheus instruments so callers
// can register them on any registry.
type Collector struct {
	SolvesTotal       *prometheus.CounterVec
	PredecessorsTotal prometheus.Counter
	CNFVariables      prometheus.Gauge
	CNFClauses        prometheus.Gauge
	SolveDuration     prometheus.Histogram
}

// Default is the collector the solver records into.
var Default = NewCollector()

// NewCollector returns an unregistered collector.
func NewCollector() *Collector {
	return &Collector{
		SolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retrolife_solves_total",
				Help: "Number of backend solve calls, partitioned by enumeration status.",
			},
			[]string{StatusLabel},
		),
		PredecessorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "retrolife_predecessors_total",
				Help: "Number of validated predecessors found.",
			},
		),
		CNFVariables: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "retrolife_cnf_variables",
				Help: "Variable count of the most recently encoded formula.",
			},
		),
		CNFClauses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "retrolife_cnf_clauses",
				Help: "Clause count of the most recently encoded formula.",
			},
		),
		SolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retrolife_solve_duration_seconds",
				Help:    "Wall-clock duration of individual backend solve calls.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
	}
}

// Register registers every instrument with r.
func (c *Collector) Register(r prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{
		c.SolvesTotal,
		c.PredecessorsTotal,
		c.CNFVariables,
		c.CNFClauses,
		c.SolveDuration,
	} {
		if err := r.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefault registers the Default collector with r.
func RegisterDefault(r prometheus.Registerer) error {
	return Default.Register(r)
}

// RecordProblem notes the size of a freshly encoded formula.
func (c *Collector) RecordProblem(variables, clauses int) {
	c.CNFVariables.Set(float64(variables))
	c.CNFClauses.Set(float64(clauses))
}

// ObserveSolve records one backend solve call.
func (c *Collector) ObserveSolve(status string, d time.Duration) {
	c.SolvesTotal.WithLabelValues(status).Inc()
	c.SolveDuration.Observe(d.Seconds())
}

// RecordPredecessors counts validated predecessors.
func (c *Collector) RecordPredecessors(n int) {
	c.PredecessorsTotal.Add(float64(n))
}
