package observability

import (
	"context"
	"errors"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "canopy"

// Metrics holds the collectors for search runs.
type Metrics struct {
	runs       *prometheus.CounterVec
	descents   prometheus.Counter
	backtracks *prometheus.CounterVec
	deadEnds   *prometheus.CounterVec
	switches   *prometheus.CounterVec
	attempts   prometheus.Histogram
	foundDepth prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Search runs by result (found, exhausted, error).",
		}, []string{"result"}),
		descents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "descents_total",
			Help:      "Child descents performed.",
		}),
		backtracks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backtracks_total",
			Help:      "Backtracks by number of levels ascended.",
		}, []string{"levels"}),
		deadEnds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dead_ends_total",
			Help:      "Dead ends by reason.",
		}, []string{"reason"}),
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "category_switches_total",
			Help:      "Root category switches, by whether the same root had to be reused.",
		}, []string{"reused"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_descent_attempts",
			Help:      "Descent attempts spent per completed run.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 30, 40, 50, 100},
		}),
		foundDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "found_depth",
			Help:      "Depth of the populated leaves found.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}

	collectors := []prometheus.Collector{m.runs, m.descents, m.backtracks, m.deadEnds, m.switches, m.attempts, m.foundDepth}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDescend: func(ctx context.Context, e *domain.MoveEvent) {
			m.descents.Inc()
		},
		OnBacktrack: func(ctx context.Context, e *domain.MoveEvent) {
			m.backtracks.WithLabelValues(levelLabel(e.Levels)).Inc()
		},
		OnDeadEnd: func(ctx context.Context, e *domain.DeadEndEvent) {
			m.deadEnds.WithLabelValues(e.Reason).Inc()
		},
		OnCategorySwitch: func(ctx context.Context, e *domain.CategoryEvent) {
			reused := "false"
			if e.Reused {
				reused = "true"
			}
			m.switches.WithLabelValues(reused).Inc()
		},
		OnFound: func(ctx context.Context, e *domain.OutcomeEvent) {
			m.runs.WithLabelValues(string(domain.OutcomeFound)).Inc()
			m.attempts.Observe(float64(e.Outcome.Stats.DescentAttempts))
			m.foundDepth.Observe(float64(e.Outcome.Path.Depth()))
		},
		OnExhausted: func(ctx context.Context, e *domain.OutcomeEvent) {
			m.runs.WithLabelValues(string(domain.OutcomeExhausted)).Inc()
			m.attempts.Observe(float64(e.Outcome.Stats.DescentAttempts))
		},
	}
}

// ObserveError counts a run that ended with an error instead of an outcome.
// Hooks never see those runs, so the harness reports them here.
func (m *Metrics) ObserveError(err error) {
	if err == nil {
		return
	}
	result := "error"
	switch {
	case errors.Is(err, domain.ErrProviderUnavailable):
		result = "provider_unavailable"
	case errors.Is(err, domain.ErrNavigation):
		result = "navigation_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = "canceled"
	}
	m.runs.WithLabelValues(result).Inc()
}

func levelLabel(levels int) string {
	switch levels {
	case 1:
		return "1"
	case 2:
		return "2"
	}
	return "other"
}
