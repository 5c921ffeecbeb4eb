package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// isValidRequestID accepts non-empty printable ASCII up to maxRequestIDLength.
// Anything else could smuggle control characters into log lines.
func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxRequestIDLength {
		return false
	}
	for i := range len(id) {
		if c := id[i]; c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// RequestID returns middleware that injects a UUIDv4 request identifier.
// A valid incoming X-Request-Id header is reused; an invalid one is replaced.
// The id is stored under chi's RequestIDKey so chimiddleware.GetReqID works.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(chimiddleware.RequestIDHeader)
			if !isValidRequestID(reqID) {
				reqID = uuid.NewString()
			}

			r = r.WithContext(context.WithValue(r.Context(), chimiddleware.RequestIDKey, reqID))
			w.Header().Set(chimiddleware.RequestIDHeader, reqID)
			next.ServeHTTP(w, r)
		})
	}
}
