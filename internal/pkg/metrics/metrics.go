// Package metrics defines the custom Prometheus metrics of the account
// service. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default Prometheus registry on import and
// exposed by the echoprometheus handler mounted at /metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vavastapak/account-service/internal/core/domain"
)

const namespace = "accounts"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - outcome: see Outcome
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - outcome: see Outcome
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// PasswordResetsTotal counts password reset steps.
// Labels:
//   - stage: "requested" or "completed"
//   - outcome: see Outcome
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset requests and completions, by outcome.",
	},
	[]string{"stage", "outcome"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts outbound e-mails.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of outbound notifications, by delivery result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks pending messages per dispatcher worker.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationSendDuration measures a single delivery attempt.
var NotificationSendDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_send_duration_seconds",
		Help:      "Duration of a single notification delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
)

// Outcome reduces a service error to a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return "duplicate"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrResetTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrInvalidResetToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrPasswordMismatch):
		return "mismatch"
	case errors.Is(err, domain.ErrMalformedInput):
		return "invalid"
	default:
		return "error"
	}
}
