package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
)

var errTooManyRequests = apperr.New(apperr.TooManyRequestsCode, "Too Many Requests")

func NewRateLimitMiddleware(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow(r.Context()) {
				response.ErrorJSON(w, r, errTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
