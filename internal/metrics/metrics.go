package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection metrics
var (
	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadbalancer_connections_total",
			Help: "Total number of client connections assigned to each backend",
		},
		[]string{"backend"},
	)

	ConnectionsCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loadbalancer_connections_current",
			Help: "Current number of in-flight connections per backend",
		},
		[]string{"backend"},
	)

	ConnectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loadbalancer_connection_duration_seconds",
			Help:    "Duration of proxied connections in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	BytesTransferred = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadbalancer_bytes_transferred_total",
			Help: "Bytes relayed between clients and backends (in: client to backend, out: backend to client)",
		},
		[]string{"direction"},
	)
)

// Error metrics
var (
	RejectedConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loadbalancer_rejected_connections_total",
			Help: "Connections turned away because no backend was available",
		},
	)

	BackendDialFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadbalancer_backend_dial_failures_total",
			Help: "Failed connection attempts to backends",
		},
		[]string{"backend"},
	)

	AcceptErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loadbalancer_accept_errors_total",
			Help: "Listener accept errors that were logged and skipped",
		},
	)
)

// Pool state metrics
var (
	BackendMaintenance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loadbalancer_backend_maintenance",
			Help: "Whether a backend is in maintenance (1) or in service (0)",
		},
		[]string{"backend"},
	)
)
