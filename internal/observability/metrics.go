// Package observability exposes Prometheus metrics for the chat proxy.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"portfoliochat/internal/chat"
	"portfoliochat/internal/llmclient"
)

var (
	chatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfoliochat_chat_requests_total",
			Help: "Total number of chat requests by outcome",
		},
		[]string{"outcome"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfoliochat_upstream_request_duration_seconds",
			Help:    "Duration of completion API calls by response status",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "status"},
	)
)

// RecordChatOutcome counts one handled chat request.
func RecordChatOutcome(outcome chat.Outcome) {
	chatRequests.WithLabelValues(string(outcome)).Inc()
}

// NewPrometheusHooks returns llmclient hooks that record upstream latency.
func NewPrometheusHooks() llmclient.Hooks {
	return llmclient.Hooks{
		OnRequestEnd: func(info llmclient.RequestInfo) {
			upstreamDuration.WithLabelValues(info.Provider, statusLabel(info)).Observe(info.Duration.Seconds())
		},
	}
}

// statusLabel is the HTTP status, "error" for transport failures.
func statusLabel(info llmclient.RequestInfo) string {
	if info.StatusCode == 0 {
		return "error"
	}
	return strconv.Itoa(info.StatusCode)
}
