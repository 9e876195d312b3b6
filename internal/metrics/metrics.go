package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recintos_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recintos_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recintos_rate_limited_requests_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
		[]string{"method"},
	)

	ConflictChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recintos_conflict_checks_total",
			Help: "Conflict checks by result (conflict, clear, error)",
		},
		[]string{"result"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recintos_reservations_total",
			Help: "Citizen reservations by outcome",
		},
		[]string{"outcome"},
	)

	ReservationCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recintos_reservation_cancellations_total",
			Help: "Total number of cancelled reservations",
		},
	)

	CourseBookingDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recintos_course_booking_decisions_total",
			Help: "Course booking decisions by resulting status",
		},
		[]string{"status"},
	)

	PaymentReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recintos_payment_reconciliations_total",
			Help: "Payment reconciliations by outcome",
		},
		[]string{"outcome"},
	)

	PaymentWebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recintos_payment_webhooks_total",
			Help: "Inbound payment webhooks by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recintos_notifications_total",
			Help: "Notifications sent by type and status",
		},
		[]string{"type", "status"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recintos_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recintos_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRateLimited(method string) {
	RateLimitedTotal.WithLabelValues(method).Inc()
}

func RecordConflictCheck(result string) {
	ConflictChecksTotal.WithLabelValues(result).Inc()
}

func RecordReservation(outcome string) {
	ReservationsTotal.WithLabelValues(outcome).Inc()
}

func RecordReservationCancellation() {
	ReservationCancellationsTotal.Inc()
}

func RecordCourseBookingDecision(status string) {
	CourseBookingDecisionsTotal.WithLabelValues(status).Inc()
}

func RecordReconciliation(outcome string) {
	PaymentReconciliationsTotal.WithLabelValues(outcome).Inc()
}

func RecordWebhook(outcome string) {
	PaymentWebhooksTotal.WithLabelValues(outcome).Inc()
}

func RecordNotification(kind, status string) {
	NotificationsTotal.WithLabelValues(kind, status).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
