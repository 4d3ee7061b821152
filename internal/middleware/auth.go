package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"taskcom/internal/models"
)

type SessionResolver interface {
	SessionUser(ctx context.Context, token string) (*models.User, error)
}

const userKey contextKey = "current_user"

// Auth resolves the bearer session token and stores the authenticated user in
// the request context. Requests without a valid session get 401.
func Auth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			user, err := sessions.SessionUser(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients cannot set headers, they pass the token in the query.
	return r.URL.Query().Get("token")
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"UNAUTHORIZED","message":"Authentication required"}`))
}

// WithUser returns a context carrying the user, the same way Auth does.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func CurrentUser(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}

func CompanyID(ctx context.Context) uuid.UUID {
	if u := CurrentUser(ctx); u != nil {
		return u.CompanyID
	}
	return uuid.Nil
}
