package server

import (
	"fmt"
	"log"
	"net/http"

	"gradebetter/internal/ai"
	"gradebetter/internal/config"
	"gradebetter/internal/repository"
	rtr "gradebetter/internal/router"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func Routes(cfg *config.ServerConfig, repo *repository.FirebaseRepository, aiClient *ai.Client) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.Logger, // Log API Request Calls
	)

	router.Route("/", func(r chi.Router) {
		r.Mount("/", rtr.HealthRoutes())
	})

	router.Mount("/metrics", promhttp.Handler())

	router.Route("/v1", func(r chi.Router) {
		r.Mount("/users", rtr.AuthRoutes(repo, cfg))
		r.Mount("/courses", rtr.CourseRoutes(repo, cfg))
		r.Mount("/assignments", rtr.AssignmentRoutes(repo, aiClient, cfg))
		r.Mount("/submissions", rtr.SubmissionRoutes(repo, aiClient, cfg))
		r.Mount("/discrepancies", rtr.DiscrepancyRoutes(repo, cfg))
	})

	return router
}

func Start(cfg *config.ServerConfig, repo *repository.FirebaseRepository, aiClient *ai.Client) {
	router := Routes(cfg, repo, aiClient)
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedHeaders:   []string{"Cookie", "Content-Type"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PATCH"},
		ExposedHeaders:   []string{"Set-Cookie"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)
	log.Printf("Server is listening on port %v\n", cfg.Port)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", cfg.Port), handler))
}
