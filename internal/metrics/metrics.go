package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "lumos"

// Job outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
	OutcomeCached    = "cached"
)

// Recorder collects sweep instrumentation in a private registry.
type Recorder struct {
	registry *prometheus.Registry
	jobs     *prometheus.CounterVec
	degraded prometheus.Counter
	duration prometheus.Histogram
}

// NewRecorder returns a Recorder with every collector registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "jobs_total",
			Help:      "Design points processed, by outcome.",
		}, []string{"outcome"}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "degraded_evaluations_total",
			Help:      "Design points whose cores could not fit the power budget at minimum voltage.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "job_duration_seconds",
			Help:      "Wall time spent evaluating one design point.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	r.registry.MustRegister(r.jobs, r.degraded, r.duration)
	for _, o := range []string{OutcomeSucceeded, OutcomeFailed, OutcomeCancelled, OutcomeCached} {
		r.jobs.WithLabelValues(o)
	}
	return r
}

// ObserveJob records one processed design point.
func (r *Recorder) ObserveJob(outcome string, d time.Duration, degraded bool) {
	r.jobs.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSucceeded || outcome == OutcomeFailed {
		r.duration.Observe(d.Seconds())
	}
	if degraded {
		r.degraded.Inc()
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteText writes every metric in the Prometheus text exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
