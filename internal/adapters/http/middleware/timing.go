package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rinkdesk/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the default threshold for slow request warnings.
const DefaultSlowRequestMs = 200

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rinkdesk",
			Name:      "http_requests_total",
			Help:      "Served requests by method, route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rinkdesk",
			Name:      "http_request_duration_seconds",
			Help:      "Request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// statusWriter records the status code and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// RouteLabel collapses id segments of a path so metric labels stay bounded:
// "/api/rosters/42/upcoming" becomes "/api/rosters/{id}/upcoming". A segment
// is an id when it contains a digit.
func RouteLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if strings.IndexFunc(s, unicode.IsDigit) >= 0 {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// Timing returns middleware that logs, counts and records request duration.
// Health and metrics checks are excluded. Requests at or above thresholdMs
// log at WARN, the rest at DEBUG. A nil collector skips the perf snapshot.
// PRE: thresholdMs <= 0 means DefaultSlowRequestMs
func Timing(collector *perf.Collector, thresholdMs int) func(http.Handler) http.Handler {
	if thresholdMs <= 0 {
		thresholdMs = DefaultSlowRequestMs
	}
	threshold := float64(thresholdMs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			route := RouteLabel(r.URL.Path)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			sw.bytes = 0
			defer func() {
				elapsed := time.Since(start)
				durationMs := float64(elapsed.Microseconds()) / 1000.0

				level := slog.LevelDebug
				event := "request"
				if durationMs >= threshold {
					level, event = slog.LevelWarn, "slow_request"
				}
				slog.Log(r.Context(), level, event,
					"request_id", RequestIDFromContext(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", sw.status,
					"bytes", sw.bytes,
					"duration_ms", durationMs,
				)

				httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
				httpDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
				collector.Record(perf.Entry{
					Kind:       perf.KindRequest,
					Path:       r.Method + " " + route,
					StatusCode: sw.status,
					DurationMs: durationMs,
					Timestamp:  start,
				})

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
