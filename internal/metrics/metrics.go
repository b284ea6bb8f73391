// Package metrics holds the Prometheus collectors for the simulator.
// Collectors register on the default registry and are exposed by the API
// server under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taxcredit"

// ─── Simulation ─────────────────────────────────────────────────────────────

// SimulationRuns counts finished runs by outcome ("ok" or the error code).
var SimulationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "simulation",
	Name:      "runs_total",
	Help:      "Total simulation runs by outcome.",
}, []string{"outcome"})

// SimulationSteps counts executed quarter-hour steps across all runs.
var SimulationSteps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "simulation",
	Name:      "steps_total",
	Help:      "Total quarter-hour steps executed.",
})

// SimulationDuration observes wall time per run.
var SimulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "simulation",
	Name:      "duration_seconds",
	Help:      "Wall time of a simulation run.",
	Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
})

// CreditSteps counts classified steps by 45V tier.
var CreditSteps = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "simulation",
	Name:      "credit_steps_total",
	Help:      "Total classified steps by tax credit tier.",
}, []string{"tier"})

// ─── Grid ───────────────────────────────────────────────────────────────────

// GenerationsIngested counts generation records added to the grid.
var GenerationsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "grid",
	Name:      "generations_ingested_total",
	Help:      "Total generation records ingested by source.",
}, []string{"source"})

// IngestFailures counts generation files that failed to load.
var IngestFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "grid",
	Name:      "ingest_failures_total",
	Help:      "Total generation files that failed to ingest.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total API requests by route and status code.",
}, []string{"route", "status"})
