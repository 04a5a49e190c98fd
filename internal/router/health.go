package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func HealthRoutes() *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return router
}
