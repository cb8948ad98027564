package middleware

import (
	"context"
	"net/http"
	"strings"

	"sparkmatch-backend/internal/apperrors"
)

// TokenValidator resolves a bearer token to the user ID it was issued for
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
}

type contextKey string

const userIDKey contextKey = "user_id"

// AuthMiddleware rejects requests without a valid bearer token and stores
// the authenticated user ID in the request context.
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "bearer token required")
				return
			}

			userID, err := tokens.ValidateJWT(token)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user ID, or "" outside the middleware
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// ValidateWebSocketToken authenticates the token query parameter used by
// websocket clients, which cannot set an Authorization header.
func ValidateWebSocketToken(token string, tokens TokenValidator) (string, error) {
	if token == "" {
		return "", apperrors.New(apperrors.Unauthorized, "token required")
	}
	return tokens.ValidateJWT(token)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
