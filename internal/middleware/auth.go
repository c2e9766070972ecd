package middleware

import (
	"net/http"
	"strings"

	"github.com/lozanotech/task-manager-api/internal/ctxkeys"
	"github.com/lozanotech/task-manager-api/internal/service"
)

// RequireAuth resolves the bearer token to a user and attaches both to the
// request context. A token authenticates only if its signature verifies AND
// its session row still exists AND the user record is still there. Every
// failure mode gets the same 401 body so a caller cannot probe which check
// tripped.
func RequireAuth(authService *service.AuthService, userService *service.UserService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthenticated(w)
				return
			}

			userID, err := authService.VerifyToken(token)
			if err != nil {
				unauthenticated(w)
				return
			}

			// Revocation check: the signature alone is not enough
			err = authService.CheckSession(userID, token)
			if err != nil {
				unauthenticated(w)
				return
			}

			user, err := userService.ByID(userID)
			if err != nil {
				unauthenticated(w)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Please authenticate"}`))
}
