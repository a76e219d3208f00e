package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

var errInvalidToken = apperr.New(apperr.ForbiddenCode, "invalid token")

// AuthPayloadMiddleware 沒有 Authorization header 直接放行
// 有帶但驗證失敗回傳 403, 避免退回 body username
func AuthPayloadMiddleware(verifier *TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get(constants.AuthorizationHeaderKey)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			fields := strings.Fields(header)
			if len(fields) < 2 || strings.ToLower(fields[0]) != constants.AuthorizationTypeBearer {
				response.ErrorJSON(w, r, errInvalidToken)
				return
			}

			identity, err := verifier.Verify(fields[1])
			if err != nil {
				response.ErrorJSON(w, r, errInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), identity)))
		})
	}
}

func WithCaller(ctx context.Context, identity authz.Identity) context.Context {
	return context.WithValue(ctx, constants.CallerKey, identity)
}

func GetCaller(ctx context.Context) (authz.Identity, bool) {
	identity, ok := ctx.Value(constants.CallerKey).(authz.Identity)
	return identity, ok && !identity.IsZero()
}
