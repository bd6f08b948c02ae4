package observability

import (
	"context"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by build hooks.
type Metrics struct {
	Builds             *prometheus.CounterVec
	DroppedConnections *prometheus.CounterVec
	NodesBuilt         *prometheus.CounterVec
	BuildDuration      *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statescript_builds_total",
				Help: "Total number of graph builds by result",
			},
			[]string{"result"},
		),
		DroppedConnections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statescript_dropped_connections_total",
				Help: "Connections left out of built graphs",
			},
			[]string{"reason"},
		),
		NodesBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statescript_nodes_built_total",
				Help: "Nodes instantiated by category",
			},
			[]string{"category"},
		),
		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statescript_build_duration_seconds",
				Help:    "Duration of graph builds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"result"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Builds, m.DroppedConnections, m.NodesBuilt, m.BuildDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeBuilt: func(_ context.Context, e *domain.NodeEvent) {
			m.NodesBuilt.WithLabelValues(string(e.Category)).Inc()
		},
		OnConnectionDropped: func(_ context.Context, e *domain.ConnectionEvent) {
			m.DroppedConnections.WithLabelValues(e.Reason).Inc()
		},
		OnBuildFinish: func(_ context.Context, e *domain.BuildEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.Builds.WithLabelValues(result).Inc()
			m.BuildDuration.WithLabelValues(result).Observe(e.Duration.Seconds())
		},
	}
}
