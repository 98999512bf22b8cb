package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pool Metrics
var (
	PoolDesktopsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "helios",
		Subsystem: "pool",
		Name:      "desktops_total",
		Help:      "Fixed capacity of the desktop pool",
	})

	PoolDesktopsAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "helios",
		Subsystem: "pool",
		Name:      "desktops_available",
		Help:      "Current number of available desktop instances",
	})

	PoolAllocationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "helios",
		Subsystem: "pool",
		Name:      "allocation_latency_seconds",
		Help:      "Latency of allocating a desktop from the pool",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	PoolExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "helios",
		Subsystem: "pool",
		Name:      "exhausted_total",
		Help:      "Total number of allocations rejected because no desktop was available",
	})
)

// Session Metrics
var (
	SessionsActiveCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "helios",
		Subsystem: "session",
		Name:      "active_count",
		Help:      "Number of currently active sessions",
	})

	SessionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "helios",
		Subsystem: "session",
		Name:      "expired_total",
		Help:      "Total number of sessions reclaimed by the expiry sweeper",
	})
)

// Exec Metrics
var (
	ExecCommandsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "helios",
		Subsystem: "exec",
		Name:      "commands_total",
		Help:      "Total number of executed whitelisted commands",
	})

	ExecRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "helios",
		Subsystem: "exec",
		Name:      "rejected_total",
		Help:      "Total number of commands rejected by the whitelist",
	})
)
