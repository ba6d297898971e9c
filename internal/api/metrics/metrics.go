// Package metrics defines and registers all custom Prometheus metrics for
// the adventure API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adventure"

// AdventuresStartedTotal counts successfully started adventures.
// Label:
//   - with_cover: "true" when cover generation was requested, else "false"
var AdventuresStartedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "adventures_started_total",
		Help:      "Total number of adventures successfully started.",
	},
	[]string{"with_cover"},
)

// NodesGeneratedTotal counts continuation nodes successfully appended.
// Label:
//   - outcome: "continue", "finish" or "dead"
var NodesGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "nodes_generated_total",
		Help:      "Total number of continuation nodes appended, by outcome.",
	},
	[]string{"outcome"},
)

// GeneratorErrorsTotal counts failed generator calls.
// Label:
//   - reason: "timeout" or "failure"
var GeneratorErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generator_errors_total",
		Help:      "Total number of failed story or image generator calls.",
	},
	[]string{"reason"},
)

// ThumbnailCacheTotal counts thumbnail cache decisions.
// Label:
//   - result: "hit" (served from cache) or "miss" (rendered)
var ThumbnailCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "thumbnail_cache_total",
		Help:      "Total number of thumbnail cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// KeyVerificationsTotal counts API key verification attempts.
// Label:
//   - result: "ok", "invalid", "inactive", "expired" or "not_found"
var KeyVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "key_verifications_total",
		Help:      "Total number of API key verification attempts, by result.",
	},
	[]string{"result"},
)
