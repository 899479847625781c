// Package metrics defines and registers the custom Prometheus metrics of the
// connector API. It is the single source of truth for metric names, labels
// and help strings. All vectors register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devconnector"

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "success", "rejected" (bad input or credentials) or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"action", "result"},
)

// TokenVerificationsTotal counts session checks on private routes.
// Label:
//   - result: "ok", "missing", "invalid" or "error"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of token verifications on private routes, by result.",
	},
	[]string{"result"},
)

// OwnershipDenialsTotal counts requests refused because the principal does
// not own the target resource.
// Label:
//   - resource: "profile", "post" or "comment"
var OwnershipDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ownership_denials_total",
		Help:      "Total number of writes refused by the ownership guard.",
	},
	[]string{"resource"},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// PostInteractionsTotal counts successful post writes.
// Label:
//   - kind: "create", "delete", "like", "unlike", "comment" or "uncomment"
var PostInteractionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_interactions_total",
		Help:      "Total number of successful post writes, by kind.",
	},
	[]string{"kind"},
)

// GitHubLookupsTotal counts GitHub repository lookups.
// Label:
//   - source: "cache", "upstream", "not_found" or "error"
var GitHubLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "github_lookups_total",
		Help:      "Total number of GitHub repository lookups, by where the answer came from.",
	},
	[]string{"source"},
)

// ── Activity log metrics ──────────────────────────────────────────────────────

// ActivityQueueDepth tracks the number of activities waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activities pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivitiesTotal counts activity log outcomes.
// Label:
//   - result: "persisted", "dropped" (queue full) or "failed"
var ActivitiesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activities_total",
		Help:      "Total number of activity records, by outcome.",
	},
	[]string{"result"},
)

// ActivityPersistDuration measures how long writing one activity takes.
var ActivityPersistDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_persist_duration_seconds",
		Help:      "Duration of activity persistence from dequeue to insert.",
		Buckets:   prometheus.DefBuckets,
	},
)
