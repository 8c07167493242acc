package middleware

import (
	"net/http"
	"strconv"
	"time"

	"worktrack/internal/platform/metrics"
)

// LatencyMiddleware records request duration and counts per route pattern.
func LatencyMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			// Label by path template would need chi route context resolution
			// after serving; URL path keeps cardinality acceptable here
			// because all IDs are path-segment UUIDs collapsed below.
			m.ObserveRequest(routeLabel(r), r.Method, strconv.Itoa(sw.status/100*100), start)
		})
	}
}

// routeLabel collapses UUID path segments to ":id" to bound label
// cardinality.
func routeLabel(r *http.Request) string {
	const hexDashLen = 36
	path := r.URL.Path
	out := make([]byte, 0, len(path))
	seg := 0
	for i := 0; i < len(path); {
		j := i
		for j < len(path) && path[j] != '/' {
			j++
		}
		if j-i == hexDashLen {
			out = append(out, ":id"...)
		} else {
			out = append(out, path[i:j]...)
		}
		if j < len(path) {
			out = append(out, '/')
			j++
		}
		i = j
		seg++
	}
	return string(out)
}
