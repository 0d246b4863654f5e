// Package middleware provides the HTTP middleware chain: session
// authentication, cycle-membership gating, request logging and metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seetoh/bagelfunds/internal/auth"
	"github.com/seetoh/bagelfunds/internal/httputil"
	"github.com/seetoh/bagelfunds/internal/storage"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "bagel_session"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// UsernameKey is the context key for storing the authenticated username.
	UsernameKey contextKey = "username"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetUsername extracts the username from the context.
// Returns empty string if not found.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}

// RequireAuth validates the session token and puts the caller's identity in
// the request context. The token is read from the session cookie, with an
// Authorization Bearer header as fallback. Requests without a valid token get
// a 401.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				httputil.WriteError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
				return
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				httputil.WriteError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMember gates cycle-scoped routes: the authenticated caller must hold
// a membership in the cycle named by the {cycleID} path parameter. Runs after
// RequireAuth.
func RequireMember(store storage.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			cycleID := chi.URLParam(r, "cycleID")
			if userID == "" || cycleID == "" {
				httputil.WriteError(w, http.StatusForbidden, "not a member of this cycle")
				return
			}

			membership, err := store.GetMembership(r.Context(), cycleID, userID)
			if err != nil {
				httputil.WriteError(w, http.StatusInternalServerError, "failed to check membership")
				return
			}
			if membership == nil {
				httputil.WriteError(w, http.StatusForbidden, "not a member of this cycle")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest pulls the session token from the cookie or, failing that,
// from a Bearer Authorization header. Routes that serve both signed-in and
// anonymous callers use it directly.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}

	return ""
}
