package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabana",
			Name:      "reservation_created_total",
			Help:      "Count of reservations created by source and initial status.",
		},
		[]string{"source", "status"},
	)

	reservationCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cabana",
			Name:      "reservation_cancelled_total",
			Help:      "Count of reservations cancelled.",
		},
	)

	statusTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabana",
			Name:      "reservation_transition_total",
			Help:      "Count of reservation status transitions by target status.",
		},
		[]string{"to"},
	)

	reservationConflict = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cabana",
			Name:      "reservation_conflict_total",
			Help:      "Count of writes rejected because the cabin was already taken.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabana",
			Name:      "http_requests_total",
			Help:      "Count of API requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabana",
			Name:      "notifications_sent_total",
			Help:      "Count of staff Telegram messages by outcome.",
		},
		[]string{"status"},
	)

	notificationRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cabana",
			Name:      "notification_retries_total",
			Help:      "Count of Telegram send retries.",
		},
	)

	notificationQueue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cabana",
			Name:      "notification_queue_size",
			Help:      "Messages waiting to be sent to staff chats.",
		},
	)

	notificationSendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cabana",
			Name:      "notification_send_duration_seconds",
			Help:      "Time to deliver one message, including retries.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationCreated, reservationCancelled, statusTransition, reservationConflict, httpRequests,
			notificationsSent, notificationRetries, notificationQueue, notificationSendDuration,
		)
	})
}

func IncReservationCreated(source, status string) {
	reservationCreated.WithLabelValues(source, status).Inc()
}

func IncReservationCancelled() {
	reservationCancelled.Inc()
}

func IncStatusTransition(to string) {
	statusTransition.WithLabelValues(to).Inc()
}

func IncConflict() {
	reservationConflict.Inc()
}

func IncHTTPRequest(route, method string, code int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

// ObserveNotification records one delivery attempt; status is "sent", "failed" or "dropped".
func ObserveNotification(status string, took time.Duration) {
	notificationsSent.WithLabelValues(status).Inc()
	if status != "dropped" {
		notificationSendDuration.Observe(took.Seconds())
	}
}

func IncNotificationRetry() {
	notificationRetries.Inc()
}

func SetNotificationQueue(n int) {
	notificationQueue.Set(float64(n))
}
