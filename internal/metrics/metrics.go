// Package metrics defines and registers all custom Prometheus metrics for the
// rental bot. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rentbot"

// ── Intake metrics ────────────────────────────────────────────────────────────

// BookingsCreatedTotal counts Pending rentals opened by intake.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of booking requests accepted by intake.",
	},
)

// BookingsRejectedTotal counts intake rejections.
// Label:
//   - reason: error kind (e.g. "validation", "not_found", "conflict")
var BookingsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_rejected_total",
		Help:      "Total number of booking requests rejected by intake, by error kind.",
	},
	[]string{"reason"},
)

// ── Lifecycle metrics ─────────────────────────────────────────────────────────

// RentalTransitionsTotal counts rental state transitions.
// Labels:
//   - to: the resulting status (e.g. "Accepted", "Completed")
//   - result: "applied" or "conflict" (CAS found nothing to update)
var RentalTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rental_transitions_total",
		Help:      "Total number of attempted rental transitions, by target status and result.",
	},
	[]string{"to", "result"},
)

// ActualRentalHours observes the billed duration of finished rentals.
var ActualRentalHours = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rental_actual_hours",
		Help:      "Actual duration in hours of completed or early-ended rentals.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 6, 8, 12},
	},
)

// ── Scheduler metrics ─────────────────────────────────────────────────────────

// ActiveCountdowns tracks the number of countdowns currently in memory.
var ActiveCountdowns = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_countdowns",
		Help:      "Current number of running rental countdowns.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification deliveries.
// Labels:
//   - kind: notification kind
//   - result: "sent", "failed" or "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications handed to the platform, by kind and result.",
	},
	[]string{"kind", "result"},
)

// FramesThrottledTotal counts countdown frames dropped by the per-countdown limiter.
var FramesThrottledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "countdown_frames_throttled_total",
		Help:      "Total number of countdown display frames dropped by rate limiting.",
	},
)

// NotifyQueueDepth tracks the pending notifications in each dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotifyQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notify_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
