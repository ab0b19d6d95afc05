package middleware

import (
	"context"
	"net/http"

	"ghorihut-backend/internal/domain"
	"ghorihut-backend/pkg/utils"
)

// AuthMiddleware authenticates the request and stores a partial user,
// built from the token claims, in the request context. Claims are trusted
// for the token lifetime; no DB round trip per request.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ExtractClaims(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user := &domain.User{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
