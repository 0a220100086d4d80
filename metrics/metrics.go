// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"vizhaa-backend/apperr"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	OTPSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_sends_total",
			Help: "Total number of OTP send attempts.",
		},
		[]string{"purpose", "result"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"user_type", "result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	BookingApplicationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_applications_total",
			Help: "Total number of supplier applications to events.",
		},
		[]string{"result"},
	)

	BookingStatusChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_status_changes_total",
			Help: "Total number of organizer decisions on bookings.",
		},
		[]string{"status", "result"},
	)
)

var once sync.Once

// MustRegister adds every collector to the default registry. Later calls are no-ops.
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			OTPSendsTotal,
			RegistrationsTotal,
			LoginsTotal,
			BookingApplicationsTotal,
			BookingStatusChangesTotal,
		)
	})
}

// Result turns an operation error into a low-cardinality label value.
func Result(err error) string {
	if err == nil {
		return "success"
	}
	if e, ok := apperr.As(err); ok && e.Code != "" {
		return e.Code
	}
	return "error"
}
