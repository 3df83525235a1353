// Package metrics defines and registers all custom Prometheus metrics for
// the CampusCare API and socket gateway. It is the single source of truth
// for metric names, labels, and help strings.
//
// Metrics are registered with the default registry via promauto at package
// load; both binaries expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campuscare"

// ── Ticket metrics ────────────────────────────────────────────────────────────

// TicketsCreatedTotal counts created tickets.
// Labels:
//   - priority: the classifier-assigned priority (e.g. "HIGH")
//   - category: the classifier-assigned category (e.g. "Plumbing")
var TicketsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_created_total",
		Help:      "Total number of tickets created, by priority and category.",
	},
	[]string{"priority", "category"},
)

// ClassifierFallbackTotal counts ticket creations that fell back to the
// default label because the classifier errored or timed out.
var ClassifierFallbackTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifier_fallback_total",
		Help:      "Total number of classifications that degraded to the fallback label.",
	},
)

// ── Event bus metrics ─────────────────────────────────────────────────────────

// EventsPublishedTotal counts bus publish attempts from the API process.
// Labels:
//   - type: event type (e.g. "TICKET_CREATED")
//   - outcome: "ok" or "error" (publish failures are swallowed, not retried)
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of events published to the bus, by type and outcome.",
	},
	[]string{"type", "outcome"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayConnections tracks the number of currently open socket connections.
var GatewayConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gateway_connections",
		Help:      "Number of currently authenticated socket connections.",
	},
)

// EventsDeliveredTotal counts events written to socket connections.
// Label:
//   - type: event type
var EventsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_delivered_total",
		Help:      "Total number of events delivered to socket connections, by type.",
	},
	[]string{"type"},
)

// DeliveryErrorsTotal counts events that could not be handed to a
// connection.
// Label:
//   - reason: short description (e.g. "slow_consumer", "write_failed")
var DeliveryErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_errors_total",
		Help:      "Total number of socket delivery failures, by reason.",
	},
	[]string{"reason"},
)
