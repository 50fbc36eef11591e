// Package metrics holds Prometheus instruments that are used across the
// portal.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts by operation and result.",
		},
		[]string{"op", "result"})

	SessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Session state transitions published by the auth gateway.",
		},
		[]string{"state"})

	RemoteRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_request_duration_seconds",
			Help:    "Latency of advisory-backend calls by endpoint.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"})

	RemoteRequestErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_request_errors_total",
			Help: "Failed advisory-backend calls by endpoint.",
		},
		[]string{"endpoint"})

	ChatMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat transcript entries appended, by sender.",
		},
		[]string{"sender"})

	EmailSendTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_send_total",
			Help: "Email-delivery attempts by result.",
		},
		[]string{"result"})
)

func init() {
	prometheus.MustRegister(
		AuthAttemptsTotal,
		SessionTransitionsTotal,
		RemoteRequestDuration,
		RemoteRequestErrorsTotal,
		ChatMessagesTotal,
		EmailSendTotal,
	)
}
