package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/planhub/planhub/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// RequireAuth resolves the bearer token against the identity store and
// attaches the caller to the request context. Missing, malformed and unknown
// tokens all get the same generic 401 body.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			sendError(w, "Invalid auth token", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		user, err := h.Auth.Resolve(r.Context(), token)
		if err != nil {
			sendError(w, "Invalid auth token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated caller put in place by RequireAuth.
func currentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
