package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the contact book.
type Metrics struct {
	ContactsCreated prometheus.Counter
	ContactsDeleted prometheus.Counter
	OperationErrors *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ContactsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "contactbook_contacts_created_total",
			Help: "Total number of contacts created",
		}),
		ContactsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "contactbook_contacts_deleted_total",
			Help: "Total number of contacts deleted",
		}),
		OperationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_operation_errors_total",
			Help: "Directory operations that failed, by operation and error kind",
		}, []string{"op", "kind"}),
		StoreDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactbook_store_duration_seconds",
			Help:    "Duration of contact store calls",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
	}
}

// IncrementCreated records a successful create.
func (m *Metrics) IncrementCreated() {
	m.ContactsCreated.Inc()
}

// IncrementDeleted records a successful delete.
func (m *Metrics) IncrementDeleted() {
	m.ContactsDeleted.Inc()
}

// IncrementError records a failed operation.
func (m *Metrics) IncrementError(op, kind string) {
	m.OperationErrors.WithLabelValues(op, kind).Inc()
}

// ObserveStore records the duration of a store call started at start.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Middleware counts requests by chi route pattern. Unmatched routes are
// reported as "unmatched" to keep label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
