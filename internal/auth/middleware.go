package auth

import (
	"context"
	"net/http"

	"gradebetter/internal/config"
	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"
	"gradebetter/internal/repository"
)

// AuthCtx is a middleware that rejects requests without a valid session cookie. The User associated with the
// request is added to the request context, and can be accessed via GetUserFromRequest.
func AuthCtx(repo *repository.FirebaseRepository, cfg *config.ServerConfig) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenCookie, err := r.Cookie(cfg.SessionCookieName)
			if err != nil {
				// Missing session cookie.
				rejectUnauthorizedRequest(w)
				return
			}

			// Verify the session cookie. This also detects if the user's Firebase session was
			// revoked, user deleted/disabled, etc.
			user, err := repo.VerifySessionCookie(tokenCookie)
			if err != nil {
				rejectUnauthorizedRequest(w)
				return
			}

			// create a new request context containing the authenticated user
			ctxWithUser := context.WithValue(r.Context(), "currentUser", user)
			next.ServeHTTP(w, r.WithContext(ctxWithUser))
		})
	}
}

// RequireAdmin is a middleware that rejects requests from non-admin users. Must be nested inside AuthCtx.
func RequireAdmin() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := GetUserFromRequest(r)
			if err != nil || !user.IsAdmin {
				rejectForbiddenRequest(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromRequest returns a User if it exists within the request context. Only works with routes nested
// inside AuthCtx.
func GetUserFromRequest(r *http.Request) (*models.User, error) {
	user, ok := r.Context().Value("currentUser").(*models.User)
	if ok && user != nil {
		return user, nil
	}

	return nil, qerrors.UserNotFoundError
}

// Helpers

func rejectUnauthorizedRequest(w http.ResponseWriter) {
	http.Error(w, "You must be authenticated to access this resource", http.StatusUnauthorized)
}

func rejectForbiddenRequest(w http.ResponseWriter) {
	http.Error(w, "You do not have permission to access this resource", http.StatusForbidden)
}
