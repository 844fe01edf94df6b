// Package metrics exposes Prometheus counters for batch merge activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder tracks merge outcomes for the /metrics endpoint.
type Recorder struct {
	unitsTotal    *prometheus.CounterVec
	batchesTotal  prometheus.Counter
	mergeDuration prometheus.Histogram
}

// NewRecorder registers the collectors on the default registry.
func NewRecorder() *Recorder {
	return &Recorder{
		unitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discmerge",
			Name:      "units_total",
			Help:      "Processed units by terminal state.",
		}, []string{"state"}),
		batchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "discmerge",
			Name:      "batches_total",
			Help:      "Completed batch runs.",
		}),
		mergeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "discmerge",
			Name:      "unit_duration_seconds",
			Help:      "Wall-clock time spent processing one unit.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}
}

// UnitFinished records one unit reaching a terminal state.
func (r *Recorder) UnitFinished(state string, duration time.Duration) {
	r.unitsTotal.WithLabelValues(state).Inc()
	r.mergeDuration.Observe(duration.Seconds())
}

// BatchFinished records one completed batch run.
func (r *Recorder) BatchFinished() {
	r.batchesTotal.Inc()
}
