// Package middleware contains HTTP middleware for the admin API.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"cardbase/internal/auth"
	"cardbase/pkg/api"
)

// Auth checks the Authorization header against the configured bearer
// token. An empty configured token disables authentication, which is
// only intended for local development.
func Auth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || !auth.Verify(presented, token) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(api.ErrorResponse{
					Error: "Unauthorized",
					Code:  "401",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
