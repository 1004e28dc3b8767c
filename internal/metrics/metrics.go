// Package metrics holds the Prometheus collectors of the tournament engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tournament"

// Recorder records engine activity. The zero value and a nil *Recorder are no-ops.
type Recorder struct {
	pairings       prometheus.Counter
	pairingFailure *prometheus.CounterVec
	matches        prometheus.Counter
	storeDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil registry returns a no-op recorder.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		return &Recorder{}
	}

	r := &Recorder{
		pairings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairings_generated_total",
			Help:      "Rounds of pairings produced.",
		}),
		pairingFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairing_failures_total",
			Help:      "Pairing requests that failed, by reason.",
		}, []string{"reason"}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_reported_total",
			Help:      "Match results recorded.",
		}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Duration of store calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(r.pairings, r.pairingFailure, r.matches, r.storeDuration)
	return r
}

// PairingGenerated counts one successful round of pairings.
func (r *Recorder) PairingGenerated() {
	if r == nil || r.pairings == nil {
		return
	}
	r.pairings.Inc()
}

// PairingFailed counts one failed pairing request.
func (r *Recorder) PairingFailed(reason string) {
	if r == nil || r.pairingFailure == nil {
		return
	}
	r.pairingFailure.WithLabelValues(reason).Inc()
}

// MatchReported counts one recorded match.
func (r *Recorder) MatchReported() {
	if r == nil || r.matches == nil {
		return
	}
	r.matches.Inc()
}

// ObserveStore records how long a store operation took.
func (r *Recorder) ObserveStore(operation string, d time.Duration) {
	if r == nil || r.storeDuration == nil {
		return
	}
	r.storeDuration.WithLabelValues(operation).Observe(d.Seconds())
}
