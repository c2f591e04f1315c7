package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ricirt/problem-interpretation/internal/correlation"
)

// CorrelationID reuses a well-formed X-Correlation-ID from the caller or
// generates a UUID. The id is stored on the request context, where the LLM
// client picks it up for outbound calls, and echoed in the response.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlation.Header)
		if !correlation.Valid(id) {
			id = uuid.New().String()
		}
		w.Header().Set(correlation.Header, id)
		next.ServeHTTP(w, r.WithContext(correlation.WithID(r.Context(), id)))
	})
}
