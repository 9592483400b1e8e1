// Package metrics holds the Prometheus collectors for the API and the
// reminder job.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "aada"

// HTTP collects request counts and latencies by route pattern.
type HTTP struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTP() *HTTP {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &HTTP{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Middleware records every request once the route pattern is known.
func (m *HTTP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *HTTP) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ReminderRun is the outcome of one reminder job pass.
type ReminderRun struct {
	Scanned     int
	Skipped     int
	MarkedPaid  int
	Receipts    int
	Reminders   int
	LateNotices int
	Failures    int
	Duration    time.Duration
	FinishedAt  time.Time
}

// Reminder exposes the reminder job's last run for a Pushgateway.
type Reminder struct {
	registry *prometheus.Registry
	invoices *prometheus.GaugeVec
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
}

func NewReminder() *Reminder {
	m := &Reminder{
		registry: prometheus.NewRegistry(),
		invoices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reminder",
			Name:      "invoices",
			Help:      "Invoices handled by the last reminder run, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reminder",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last reminder run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reminder",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last reminder run finished.",
		}),
	}
	m.registry.MustRegister(m.invoices, m.duration, m.lastRun)
	return m
}

func (m *Reminder) Observe(run ReminderRun) {
	m.invoices.WithLabelValues("scanned").Set(float64(run.Scanned))
	m.invoices.WithLabelValues("skipped").Set(float64(run.Skipped))
	m.invoices.WithLabelValues("marked_paid").Set(float64(run.MarkedPaid))
	m.invoices.WithLabelValues("receipt_sent").Set(float64(run.Receipts))
	m.invoices.WithLabelValues("reminder_sent").Set(float64(run.Reminders))
	m.invoices.WithLabelValues("late_notice_sent").Set(float64(run.LateNotices))
	m.invoices.WithLabelValues("failed").Set(float64(run.Failures))
	m.duration.Set(run.Duration.Seconds())
	m.lastRun.Set(float64(run.FinishedAt.Unix()))
}

// Push sends the collected values to a Prometheus Pushgateway.
func (m *Reminder) Push(ctx context.Context, gatewayURL string) error {
	if err := push.New(gatewayURL, "aada_reminders").Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

// Gatherer exposes the registry to tests and callers that scrape it directly.
func (m *Reminder) Gatherer() prometheus.Gatherer {
	return m.registry
}
