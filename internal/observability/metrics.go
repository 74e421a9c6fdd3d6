// Package observability registers the service's Prometheus metrics.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "innometrics",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "innometrics",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	batchRollbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "innometrics",
		Subsystem: "bulk",
		Name:      "batch_rollbacks_total",
		Help:      "Bulk activity submissions that failed and were rolled back.",
	})

	rollbackDeleteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "innometrics",
		Subsystem: "bulk",
		Name:      "rollback_delete_failures_total",
		Help:      "Compensating deletes that failed during batch rollback.",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, batchRollbacks, rollbackDeleteFailures)
}

// RecordBatchRollback counts one rolled-back bulk submission.
func RecordBatchRollback() { batchRollbacks.Inc() }

// RecordRollbackDeleteFailure counts one failed compensating delete.
func RecordRollbackDeleteFailure() { rollbackDeleteFailures.Inc() }

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler { return promhttp.Handler() }

// Middleware instruments every matched route with request count and
// latency metrics. Labels use the route template, not the raw path, to
// keep cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
