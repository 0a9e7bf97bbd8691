// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registrations counts registration attempts by outcome:
	// accepted, rejected_validation, rejected_duplicate, failed.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registration_attempts_total",
		Help: "Patient registration attempts by outcome.",
	}, []string{"outcome"})

	// Notifications counts notification deliveries by channel and status
	// (sent or failed).
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_deliveries_total",
		Help: "Notification delivery attempts by channel and status.",
	}, []string{"channel", "status"})

	// HTTPRequests counts HTTP requests by method, path and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})
)

// Outcome labels for Registrations.
const (
	OutcomeAccepted          = "accepted"
	OutcomeRejectedInvalid   = "rejected_validation"
	OutcomeRejectedDuplicate = "rejected_duplicate"
	OutcomeFailed            = "failed"
)

// Status labels for Notifications.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Handler returns the /metrics endpoint handler.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
