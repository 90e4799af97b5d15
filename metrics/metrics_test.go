package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementCreated()
	m.IncrementCreated()
	m.IncrementDeleted()
	m.IncrementError("create", "storage")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ContactsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationErrors.WithLabelValues("create", "storage")))
}

func TestObserveStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveStore("count", time.Now())

	n, err := testutil.GatherAndCount(reg, "contactbook_store_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Delete("/api/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/contacts/1", "/api/contacts/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("DELETE", "/api/contacts/{id}", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/health", "200")))
}
