package metrics

import "github.com/prometheus/client_golang/prometheus"

// WizardMetrics exposes counters/histograms for the booking wizard.
type WizardMetrics struct {
	stepsCompleted  *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	restores        *prometheus.CounterVec
	commits         *prometheus.CounterVec
	commitLatency   prometheus.Histogram
}

func NewWizardMetrics(reg prometheus.Registerer) *WizardMetrics {
	m := &WizardMetrics{
		stepsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medspa",
			Subsystem: "wizard",
			Name:      "steps_completed_total",
			Help:      "Slices written into booking drafts, by wizard step",
		}, []string{"step"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medspa",
			Subsystem: "wizard",
			Name:      "persist_failures_total",
			Help:      "Draft store writes that failed",
		}, []string{"op"}),
		restores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medspa",
			Subsystem: "wizard",
			Name:      "restores_total",
			Help:      "Draft restores on wizard construction",
		}, []string{"outcome"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medspa",
			Subsystem: "wizard",
			Name:      "commits_total",
			Help:      "Booking wizard finalize attempts",
		}, []string{"outcome"}),
		commitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medspa",
			Subsystem: "wizard",
			Name:      "commit_latency_seconds",
			Help:      "Latency of the appointment creation call made on finalize",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.stepsCompleted, m.persistFailures, m.restores, m.commits, m.commitLatency)
	return m
}

func (m *WizardMetrics) ObserveStepCompleted(step string) {
	if m == nil {
		return
	}
	m.stepsCompleted.WithLabelValues(step).Inc()
}

func (m *WizardMetrics) ObservePersistFailure(op string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(op).Inc()
}

// ObserveRestore records whether a draft was restored, missing, or discarded.
func (m *WizardMetrics) ObserveRestore(outcome string) {
	if m == nil {
		return
	}
	m.restores.WithLabelValues(outcome).Inc()
}

func (m *WizardMetrics) ObserveCommit(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(outcome).Inc()
	if seconds > 0 {
		m.commitLatency.Observe(seconds)
	}
}
