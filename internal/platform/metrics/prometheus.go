package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	recordsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_records_created_total",
			Help: "Total number of health records created",
		},
		[]string{"kind"},
	)

	recordsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_records_completed_total",
			Help: "Total number of health records marked completed",
		},
		[]string{"kind"},
	)

	remindersClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_classified_total",
			Help: "Total number of reminders classified by urgency tier",
		},
		[]string{"tier"},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notifications sent",
		},
		[]string{"channel", "status"},
	)

	pushSubscriptionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "push_subscriptions_active",
			Help: "Number of registered web push subscriptions",
		},
	)

	calendarExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calendar_exports_total",
			Help: "Total number of iCalendar exports generated",
		},
	)

	// Database metrics
	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count, duration and in-flight gauge for every
// request. Routed paths are used as the path label to keep cardinality low.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// --- Business metric helpers ---

// RecordCreated records a created health record of the given kind
// (checkup, uexam, vaccination).
func RecordCreated(kind string) {
	recordsCreated.WithLabelValues(kind).Inc()
}

// RecordCompleted records a health record marked as completed.
func RecordCompleted(kind string) {
	recordsCompleted.WithLabelValues(kind).Inc()
}

// RecordReminderClassified records a reminder classification by tier
// (overdue, urgent, upcoming).
func RecordReminderClassified(tier string) {
	remindersClassified.WithLabelValues(tier).Inc()
}

// RecordNotificationSent records a notification delivery attempt.
func RecordNotificationSent(channel, status string) {
	notificationsSent.WithLabelValues(channel, status).Inc()
}

// SetPushSubscriptions records the current number of push subscriptions.
func SetPushSubscriptions(count int) {
	pushSubscriptionsActive.Set(float64(count))
}

// RecordCalendarExport records an iCalendar export.
func RecordCalendarExport() {
	calendarExportsTotal.Inc()
}

// RecordDBConnections records active database connections.
func RecordDBConnections(count int) {
	dbConnectionsActive.Set(float64(count))
}

// RecordDBQuery records a database query duration.
func RecordDBQuery(operation string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
