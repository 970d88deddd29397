// Package metrics exposes Prometheus instrumentation for the assistant.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TurnsTotal counts chat turns by classified intent and responding agent.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swiftbank",
			Subsystem: "assist",
			Name:      "turns_total",
			Help:      "Total chat turns processed",
		},
		[]string{"intent", "agent"},
	)

	// TurnDuration observes end-to-end turn handling time.
	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "swiftbank",
			Subsystem: "assist",
			Name:      "turn_duration_seconds",
			Help:      "Chat turn handling duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)

	// WorkflowOutcomes counts workflow steps reached, labeled by terminal step.
	WorkflowOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swiftbank",
			Subsystem: "assist",
			Name:      "workflow_outcomes_total",
			Help:      "Workflow outcomes by workflow type and step",
		},
		[]string{"workflow", "step"},
	)

	// GatewayRequests counts calls to the banking backend.
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swiftbank",
			Subsystem: "assist",
			Name:      "gateway_requests_total",
			Help:      "Banking gateway requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// OTPVerifications counts OTP checks by result.
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swiftbank",
			Subsystem: "assist",
			Name:      "otp_verifications_total",
			Help:      "OTP verification attempts by result",
		},
		[]string{"result"},
	)

	// EscalationsTotal counts conversations escalated to a human agent.
	EscalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "swiftbank",
			Subsystem: "assist",
			Name:      "escalations_total",
			Help:      "Conversations escalated to a human agent",
		},
	)
)

// Handler returns the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
