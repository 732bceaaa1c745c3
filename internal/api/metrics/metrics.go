// Package metrics defines and registers the custom Prometheus metrics for the
// user management API. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics are registered with the default Prometheus registry when the
// package is initialised. Per-route HTTP metrics come from echoprometheus and
// are wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// ── Session metrics ──────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "inactive", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts sessions closed through logout.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of session tokens revoked by logout.",
	},
)

// GateRejectionsTotal counts requests stopped by the authentication and
// authorization gates.
// Label:
//   - reason: "missing_token", "revoked", "expired", "invalid", "no_identity", or "forbidden_role"
var GateRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_rejections_total",
		Help:      "Total number of requests rejected by the auth gates, by reason.",
	},
	[]string{"reason"},
)

// RevocationRegistrySize tracks the number of entries held by the in-memory
// revocation registry.
var RevocationRegistrySize = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "revocation_registry_size",
		Help:      "Current number of revoked tokens held in memory.",
	},
)

// ── User metrics ─────────────────────────────────────────────────────────────

// RegistrationsTotal counts newly registered users.
// Label:
//   - role: role assigned at registration ("admin" for the first user, "user" otherwise)
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered users, by assigned role.",
	},
	[]string{"role"},
)

// DeactivationsTotal counts users soft-deleted by an administrator.
var DeactivationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deactivations_total",
		Help:      "Total number of users deactivated by administrators.",
	},
)

// PasswordVerifyDuration measures bcrypt verification time during login.
var PasswordVerifyDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_verify_duration_seconds",
		Help:      "Duration of password verification during login.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1},
	},
)
