package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindwell_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindwell_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TokensAwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindwell_tokens_awarded_total",
			Help: "Tokens credited to user accounts.",
		},
		[]string{"category"},
	)

	TokensSpentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindwell_tokens_spent_total",
			Help: "Tokens debited from user accounts.",
		},
		[]string{"category"},
	)

	SessionsBookedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindwell_sessions_booked_total",
			Help: "Therapy sessions booked.",
		},
		[]string{"payment_method"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TokensAwardedTotal,
		TokensSpentTotal,
		SessionsBookedTotal,
	)
}
