package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// OperatorContextKey carries the authenticated operator's identity through the
// request context. Handlers pass it on as an explicit parameter; it never
// feeds any decision inside the storage or allocation layers.
const OperatorContextKey contextKey = "operator"

// AdminAuth authenticates operator requests with a bearer token and requires
// an explicit operator identity header for the audit trail. On failure the
// request is rejected before any side effect can happen.
func AdminAuth(token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				http.Error(w, "admin endpoints disabled", http.StatusUnauthorized)
				return
			}

			authz := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(authz, "Bearer ")
			if !ok || presented != token {
				http.Error(w, "invalid admin token", http.StatusUnauthorized)
				return
			}

			operator := r.Header.Get("X-Operator")
			if operator == "" {
				http.Error(w, "missing X-Operator header", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OperatorContextKey, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// OperatorFromContext returns the operator identity set by AdminAuth.
func OperatorFromContext(ctx context.Context) string {
	operator, _ := ctx.Value(OperatorContextKey).(string)
	return operator
}
