package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the transport counters.
type Metrics struct {
	Clients        prometheus.Gauge
	Actions        *prometheus.CounterVec
	DroppedClients prometheus.Counter
}

// NewMetrics registers the collectors on reg; nil leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "gridpath",
			Subsystem: "server",
			Name:      "websocket_clients",
			Help:      "Connected websocket clients.",
		}),
		Actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridpath",
			Subsystem: "server",
			Name:      "actions_total",
			Help:      "Client actions handled, by action and result.",
		}, []string{"action", "result"}),

		// slow consumers are disconnected rather than allowed to stall a run
		DroppedClients: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gridpath",
			Subsystem: "server",
			Name:      "dropped_clients_total",
			Help:      "Websocket clients disconnected for falling behind.",
		}),
	}
}
