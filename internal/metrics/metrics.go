// Package metrics exposes enumeration progress as prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/operator-framework/mustool/pkg/enumerator"
)

const (
	AlgorithmLabel = "algorithm"
	KindLabel      = "kind"
	ShrinkLabel    = "shrink"
	Skipped        = "skipped"
	Performed      = "performed"
	Approximated   = "approximated"
)

var _ enumerator.Tracer = &Tracer{}

// Tracer updates its collectors on every enumeration event.
type Tracer struct {
	algorithm string

	found        *prometheus.CounterVec
	checks       prometheus.Gauge
	criticals    prometheus.Gauge
	elapsed      prometheus.Gauge
	musSize      prometheus.Histogram
	shrinkTime   *prometheus.HistogramVec
	intersection prometheus.Gauge
	union        prometheus.Gauge
}

// NewTracer creates the collectors of a run of algorithm and registers
// them with reg.
func NewTracer(reg prometheus.Registerer, algorithm enumerator.Algorithm) (*Tracer, error) {
	t := &Tracer{
		algorithm: string(algorithm),
		found: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mustool_subsets_found_total",
				Help: "Number of minimal unsatisfiable and maximal satisfiable subsets found",
			},
			[]string{AlgorithmLabel, KindLabel},
		),
		checks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mustool_oracle_checks",
				Help: "Number of satisfiability checks performed",
			},
		),
		criticals: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mustool_critical_constraints",
				Help: "Number of constraints critical for the whole input",
			},
		),
		elapsed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mustool_elapsed_seconds",
				Help: "Time since the enumeration started, as of the last discovery",
			},
		),
		musSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mustool_mus_size",
				Help:    "Number of constraints in each MUS",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		shrinkTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "mustool_shrink_duration_seconds",
				Help: "Time spent shrinking seeds into MUSes",
			},
			[]string{ShrinkLabel},
		),
		intersection: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mustool_mus_intersection_size",
				Help: "Number of constraints present in every MUS found",
			},
		),
		union: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mustool_mus_union_size",
				Help: "Number of constraints present in some MUS found",
			},
		),
	}
	for _, c := range []prometheus.Collector{t.found, t.checks, t.criticals, t.elapsed, t.musSize, t.shrinkTime, t.intersection, t.union} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tracer) Trace(e enumerator.Event) {
	t.found.WithLabelValues(t.algorithm, e.Kind.String()).Inc()
	t.checks.Set(float64(e.Stats.Checks))
	t.criticals.Set(float64(e.Stats.Criticals))
	t.elapsed.Set(e.Stats.Elapsed.Seconds())
	if e.Kind != enumerator.MUSFound {
		return
	}

	t.musSize.Observe(float64(e.MUS.Dimension()))
	t.intersection.Set(float64(e.Intersection))
	t.union.Set(float64(e.Union))
	switch {
	case e.MUS.Approximate:
		t.shrinkTime.WithLabelValues(Approximated).Observe(0)
	case e.MUS.Skipped():
		t.shrinkTime.WithLabelValues(Skipped).Observe(0)
	default:
		t.shrinkTime.WithLabelValues(Performed).Observe(e.MUS.Duration.Seconds())
	}
}

// Found returns the counter of discoveries of the given kind.
func (t *Tracer) Found(kind string) prometheus.Counter {
	return t.found.WithLabelValues(t.algorithm, kind)
}
