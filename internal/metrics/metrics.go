package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// messagesTotal counts relay outcomes by channel and outcome.
	// Labels:
	// - channel: email | sms
	// - outcome: sent | noop | not_found | malformed | policy | upstream | internal
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "messages",
			Name:      "total",
			Help:      "Relay outcomes by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	// providerRequestSeconds observes provider call latency.
	// Labels:
	// - channel: email | sms
	// - status:  HTTP status code returned by the provider, or "error" when no response was received
	providerRequestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relay",
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Provider request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"channel", "status"},
	)
)

// IncMessageOutcome increments the relay outcome counter.
func IncMessageOutcome(channel, outcome string) {
	if channel == "" {
		channel = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	messagesTotal.WithLabelValues(channel, outcome).Inc()
}

// ObserveProviderRequest records the latency of one provider call.
func ObserveProviderRequest(channel, status string, seconds float64) {
	if channel == "" {
		channel = "unknown"
	}
	if status == "" {
		status = "error"
	}
	providerRequestSeconds.WithLabelValues(channel, status).Observe(seconds)
}
