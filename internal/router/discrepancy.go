package router

import (
	"encoding/json"
	"net/http"

	"gradebetter/internal/auth"
	"gradebetter/internal/config"
	"gradebetter/internal/middleware"
	"gradebetter/internal/models"
	repo "gradebetter/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func DiscrepancyRoutes(fr *repo.FirebaseRepository, cfg *config.ServerConfig) *chi.Mux {
	router := chi.NewRouter()
	router.Use(auth.AuthCtx(fr, cfg))

	// Students dispute rubric items on their own submissions.
	router.Post("/file/{submissionID}", fileReportHandler(fr))
	router.Get("/submission/{submissionID}", listReportsForSubmissionHandler(fr))

	// Resolution is instructor-only.
	router.Route("/assignment/{assignmentID}", func(r chi.Router) {
		r.Use(middleware.AssignmentCtx())
		r.Use(auth.RequireAssignmentInstructor(fr))

		r.Get("/", listReportsForAssignmentHandler(fr))
		r.Post("/resolve/{submissionID}", resolveReportHandler(fr))
	})

	return router
}

// POST: /file/{submissionID}
func fileReportHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := chi.URLParam(r, "submissionID")
		if !validateURLID(w, submissionID) {
			return
		}

		user, err := auth.GetUserFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		var req *models.FileReportRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.SubmissionID = submissionID
		req.FiledBy = user

		// Only the owner of a submission may dispute its grading.
		submission, err := fr.GetSubmissionByID(submissionID)
		if err != nil {
			respondError(w, err)
			return
		}
		if submission.StudentID != user.ID {
			http.Error(w, "You do not have permission to access this resource", http.StatusForbidden)
			return
		}

		report, err := fr.FileReport(req)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, report)
	}
}

// POST: /assignment/{assignmentID}/resolve/{submissionID}
func resolveReportHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := chi.URLParam(r, "submissionID")
		if !validateURLID(w, submissionID) {
			return
		}

		user, err := auth.GetUserFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		var req *models.ResolveReportRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.SubmissionID = submissionID
		req.ResolvedBy = user

		err = fr.ResolveReport(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully resolved report for rubric item " + req.RubricItemID))
	}
}

// GET: /submission/{submissionID}
func listReportsForSubmissionHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := chi.URLParam(r, "submissionID")
		if !validateURLID(w, submissionID) {
			return
		}

		reports, err := fr.ReportsForSubmission(submissionID)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, struct {
			Reports []*models.DiscrepancyReport `json:"reports"`
			Status  models.ReportStatus         `json:"status"`
		}{reports, models.AccumulatedReportStatus(reports)})
	}
}

// GET: /assignment/{assignmentID}
func listReportsForAssignmentHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := chi.URLParam(r, "assignmentID")
		if !validateURLID(w, assignmentID) {
			return
		}

		reports, err := fr.ReportsForAssignment(assignmentID)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, reports)
	}
}
