package middleware

import (
	"net/http"
	"time"
)

// Observer records one completed request. route is the chi route pattern, so
// path parameters do not explode label cardinality.
type Observer func(method, route string, status int, latency time.Duration)

// Metrics reports every request to observe once the handler has returned.
func Metrics(observe Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			observe(r.Method, routePattern(r), rec.status, time.Since(start))
		})
	}
}
