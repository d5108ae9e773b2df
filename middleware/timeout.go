package middleware

import (
	"context"
	"net/http"
	"time"
)

// CommandTimeout bounds the request context. Handlers see the deadline through
// their context and report it themselves, so nothing is written here.
func CommandTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
