package httpserver

import (
	"context"
	"net/http"
	"strings"

	"madrid_barmap/internal/domain"
)

// TokenVerifier turns a bearer token into the user it was issued to.
type TokenVerifier interface {
	Verify(token string) (domain.User, error)
}

type ctxKey int

const userKey ctxKey = iota

func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user; only valid behind RequireUser.
func UserFrom(ctx context.Context) domain.User {
	u, _ := ctx.Value(userKey).(domain.User)
	return u
}

// RequireUser rejects requests without a valid "Authorization: Bearer" token.
func RequireUser(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
				return
			}
			u, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
