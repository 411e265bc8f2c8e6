package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// AuthMiddleware validates the token of every request.
// The Authorization header may carry the token as is or as "Bearer <token>".
// Requests with a missing or invalid token are rejected with 401.
func AuthMiddleware(validToken string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				encodeJSON(w, log, http.StatusUnauthorized, errorBody("missing authorization header"))
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if subtle.ConstantTimeCompare([]byte(token), []byte(validToken)) != 1 {
				encodeJSON(w, log, http.StatusUnauthorized, errorBody("invalid token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
