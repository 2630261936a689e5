package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brk3/habitbattles/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "habits"

var requestLabels = []string{"endpoint", "method", "status_code"}

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status.",
	}, requestLabels)

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, requestLabels)

	userRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "user_requests_total",
		Help:      "Authenticated requests per user.",
	}, []string{"user_id", "endpoint", "method"})

	authEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "auth_events_total",
		Help:      "Authentication events by type and result.",
	}, []string{"event_type", "result", "provider"})

	checkInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "checkins_total",
		Help:      "Check-in attempts by result.",
	}, []string{"result"})

	activeHabitsPerUser = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "active_habits_per_user",
		Help:      "Habits owned by each user as of their last listing.",
	}, []string{"user_id"})
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// routePattern returns the matched chi pattern, e.g. /habits/{habit_id}.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"endpoint":    routePattern(r),
			"method":      r.Method,
			"status_code": strconv.Itoa(rec.status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

// userAwareMetricsMiddleware must sit inside authMiddleware so the user is
// already on the request context.
func (s *Server) userAwareMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if !s.cfg.AuthEnabled {
			return
		}
		if user, ok := r.Context().Value(userCtxKey{}).(*User); ok {
			userRequestsTotal.WithLabelValues(user.UserID, routePattern(r), r.Method).Inc()
		}
	})
}

func RecordAuthEvent(eventType, result, provider string) {
	authEventsTotal.WithLabelValues(eventType, result, provider).Inc()
	logger.Debug("Auth event", "type", eventType, "result", result, "provider", provider)
}

func RecordCheckIn(result string) {
	checkInsTotal.WithLabelValues(result).Inc()
}

func UpdateActiveHabitsForUser(userID string, count int) {
	activeHabitsPerUser.WithLabelValues(userID).Set(float64(count))
}
