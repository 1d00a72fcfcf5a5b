// Package metrics exposes Prometheus instrumentation for the API server.
//
//	streamgate_auth_events_total            counter: logins by kind and result
//	streamgate_session_checks_total         counter: liveness checks by outcome
//	streamgate_http_requests_total          counter: requests by method, route, status
//	streamgate_http_request_duration_seconds histogram: latency by method, route
//	streamgate_ws_connections               gauge: open session websockets
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthEvents counts login attempts by kind (pin, admin) and result
var AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamgate_auth_events_total",
	Help: "Authentication attempts by kind and result.",
}, []string{"kind", "result"})

// SessionChecks counts liveness checks by outcome
var SessionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamgate_session_checks_total",
	Help: "Session liveness checks by outcome.",
}, []string{"outcome"})

// HTTPRequests counts HTTP requests
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamgate_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks HTTP latency
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "streamgate_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// WSConnections is the number of open session websockets
var WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "streamgate_ws_connections",
	Help: "Open session websocket connections.",
})

// Handler serves the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency labelled by the mux route
// template, never the raw path, to keep label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := routeTemplate(r)
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
