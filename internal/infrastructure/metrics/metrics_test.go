package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware_CountsByRoutePattern(t *testing.T) {
	m := NewHTTP()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/students/abc", nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/students/{id}", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "aada_http_requests_total"))
}

func TestReminderObserve(t *testing.T) {
	m := NewReminder()
	finished := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)
	m.Observe(ReminderRun{Scanned: 5, Receipts: 1, Reminders: 2, LateNotices: 1, Failures: 1, Duration: 3 * time.Second, FinishedAt: finished})

	assert.Equal(t, float64(5), testutil.ToFloat64(m.invoices.WithLabelValues("scanned")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.invoices.WithLabelValues("reminder_sent")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.invoices.WithLabelValues("receipt_sent")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.duration))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(m.lastRun))
}

func TestReminderPush(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewReminder()
	m.Observe(ReminderRun{Scanned: 1, FinishedAt: time.Now()})
	require.NoError(t, m.Push(t.Context(), srv.URL))
	assert.Equal(t, "/metrics/job/aada_reminders", gotPath)
}
