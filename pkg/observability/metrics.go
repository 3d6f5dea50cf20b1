package observability

import (
	"context"

	"github.com/aretw0/storyline/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storyline"

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	Launches      *prometheus.CounterVec
	ItemsStarted  *prometheus.CounterVec
	ItemsFinished *prometheus.CounterVec
	ItemFailures  *prometheus.CounterVec
	ItemDuration  *prometheus.HistogramVec
	ServiceDown   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "launches_total",
				Help:      "Launch starts and finishes by outcome.",
			},
			[]string{"outcome"},
		),
		ItemsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_started_total",
				Help:      "Items successfully started, by type.",
			},
			[]string{"type"},
		),
		ItemsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_finished_total",
				Help:      "Items successfully finished, by type and status.",
			},
			[]string{"type", "status"},
		),
		ItemFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "item_failures_total",
				Help:      "Item calls the reporting service rejected, by type and operation.",
			},
			[]string{"type", "operation"},
		),
		ItemDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "item_duration_seconds",
				Help:      "Time between an item's start and finish.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"type"},
		),
		ServiceDown: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_down",
				Help:      "1 while reporting is disabled for the current launch.",
			},
		),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Launches,
		m.ItemsStarted,
		m.ItemsFinished,
		m.ItemFailures,
		m.ItemDuration,
		m.ServiceDown,
	}
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLaunchStart: func(_ context.Context, e *domain.LaunchEvent) {
			if e.Err != nil {
				m.Launches.WithLabelValues("start_failed").Inc()
				return
			}
			m.ServiceDown.Set(0)
			m.Launches.WithLabelValues("started").Inc()
		},
		OnLaunchFinish: func(_ context.Context, e *domain.LaunchEvent) {
			if e.Err != nil {
				m.Launches.WithLabelValues("finish_failed").Inc()
				return
			}
			m.Launches.WithLabelValues("finished").Inc()
		},
		OnServiceDown: func(context.Context, *domain.LaunchEvent) {
			m.ServiceDown.Set(1)
		},
		OnItemStart: func(_ context.Context, e *domain.ItemEvent) {
			typ := string(e.ItemType)
			if e.Err != nil {
				m.ItemFailures.WithLabelValues(typ, "start").Inc()
				return
			}
			m.ItemsStarted.WithLabelValues(typ).Inc()
		},
		OnItemFinish: func(_ context.Context, e *domain.ItemEvent) {
			typ := string(e.ItemType)
			if e.Err != nil {
				m.ItemFailures.WithLabelValues(typ, "finish").Inc()
				return
			}
			m.ItemsFinished.WithLabelValues(typ, string(e.Status)).Inc()
			if e.Duration > 0 {
				m.ItemDuration.WithLabelValues(typ).Observe(e.Duration.Seconds())
			}
		},
	}
}
