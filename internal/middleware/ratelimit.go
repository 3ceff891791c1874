// Package middleware provides the HTTP middleware of the web surface.
package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	apierrors "perobatch/internal/errors"
)

// RateLimit applies a global token-bucket limit to incoming requests.
// Requests beyond the burst are rejected with an RFC 7807 response.
func RateLimit(rps float64, burst int, handler *apierrors.ErrorHandler) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				handler.HandleError(w, r, apierrors.NewProblemDetails(
					http.StatusTooManyRequests,
					apierrors.TypeRateLimit,
					"Too Many Requests",
					"Request rate limit exceeded, retry later",
					r.URL.Path,
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
