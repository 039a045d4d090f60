package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reelreview"

// Metrics groups the collectors recorded by the API and service layers.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	commentsCreated  *prometheus.CounterVec
	commentsResolved prometheus.Counter
	commentsDeleted  prometheus.Counter
	sessionsCreated  prometheus.Counter
	decisions        *prometheus.CounterVec
	errors           *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		commentsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_created_total",
				Help:      "Comments and replies created, by comment type",
			},
			[]string{"type", "reply"},
		),
		commentsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_resolved_total",
			Help:      "Comments marked resolved",
		}),
		commentsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_deleted_total",
			Help:      "Comments removed, replies included",
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_sessions_created_total",
			Help:      "Review sessions opened, superseding sessions included",
		}),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "review_decisions_total",
				Help:      "Participant decisions by verdict and resulting session status",
			},
			[]string{"decision", "session_status"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_errors_total",
				Help:      "Service operation failures by error kind",
			},
			[]string{"operation", "kind"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.httpRequests,
		m.httpDuration,
		m.commentsCreated,
		m.commentsResolved,
		m.commentsDeleted,
		m.sessionsCreated,
		m.decisions,
		m.errors,
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency labelled by chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		if path == "/metrics" {
			return
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		m.httpRequests.WithLabelValues(r.Method, path, code).Inc()
		m.httpDuration.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
	})
}

// CommentCreated counts a new comment of the given type.
func (m *Metrics) CommentCreated(commentType string, reply bool) {
	if m == nil {
		return
	}
	m.commentsCreated.WithLabelValues(commentType, strconv.FormatBool(reply)).Inc()
}

// CommentResolved counts a resolution.
func (m *Metrics) CommentResolved() {
	if m == nil {
		return
	}
	m.commentsResolved.Inc()
}

// CommentsDeleted counts removed comments.
func (m *Metrics) CommentsDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.commentsDeleted.Add(float64(n))
}

// SessionCreated counts a new review session.
func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}

// Decision counts a participant verdict and the session status it produced.
func (m *Metrics) Decision(decision, sessionStatus string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision, sessionStatus).Inc()
}

// Error counts a failed service operation.
func (m *Metrics) Error(operation, kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(operation, kind).Inc()
}
