package router

import (
	"encoding/json"
	"net/http"

	"gradebetter/internal/auth"
	"gradebetter/internal/config"
	"gradebetter/internal/models"
	repo "gradebetter/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func AuthRoutes(fr *repo.FirebaseRepository, cfg *config.ServerConfig) *chi.Mux {
	router := chi.NewRouter()

	// Auth routes that require authentication
	router.Route("/", func(r chi.Router) {
		r.Use(auth.AuthCtx(fr, cfg))

		// Information about the current user
		r.Get("/me", getMeHandler)
		r.Get("/{userID}", getUserHandler(fr))

		// Update the current user's information
		r.Post("/update", updateUserHandler(fr))
		r.With(auth.RequireAdmin()).Post("/updateByEmail", updateUserByEmailHandler(fr))
	})

	// Alter the current session. No auth middlewares required.
	router.Post("/session", createSessionHandler(fr, cfg))
	router.Post("/signout", signOutHandler(cfg))

	return router
}

// GET: /me
func getMeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	render.JSON(w, r, struct {
		*models.Profile
		ID string `json:"id"`
	}{user.Profile, user.ID})
}

// GET: /{userID}
func getUserHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if !validateURLID(w, userID) {
			return
		}

		user, err := fr.GetUserByID(userID)
		if err != nil {
			respondError(w, err)
			return
		}
		render.JSON(w, r, user)
	}
}

// POST: /update
func updateUserHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.UpdateUserRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		user, err := auth.GetUserFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		req.UserID = user.ID

		err = fr.UpdateUser(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("successfully edited user " + req.UserID))
	}
}

// POST: /updateByEmail
func updateUserByEmailHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.MakeAdminByEmailRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		err = fr.MakeAdminByEmail(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully edited user " + req.Email))
	}
}

// POST: /session
func createSessionHandler(fr *repo.FirebaseRepository, cfg *config.ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		// Create the session cookie. This will also verify the ID token in the process.
		// The session cookie will have the same claims as the ID token.
		cookie, err := fr.CreateSessionCookie(req.Token)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cfg.SessionCookieName,
			Value:    cookie,
			MaxAge:   int(cfg.SessionCookieExpiration.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Path:     "/",
		})

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}
}

// POST: /signout
func signOutHandler(cfg *config.ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     cfg.SessionCookieName,
			Value:    "",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Path:     "/",
		})

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}
}
