package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklist_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasklist_http_request_duration_seconds",
			Help:    "Histogram of request durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	storeWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklist_store_writes_total",
			Help: "Full-collection writes to the blob store by operation and result",
		},
		[]string{"op", "result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, storeWritesTotal)
}

// ObserveWrite считает запись коллекции; result = ok|error
func ObserveWrite(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeWritesTotal.WithLabelValues(op, result).Inc()
}

// Middleware считает запросы и их длительность с меткой шаблона маршрута chi
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
