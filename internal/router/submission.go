package router

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/golang/glog"

	"gradebetter/internal/ai"
	"gradebetter/internal/auth"
	"gradebetter/internal/config"
	"gradebetter/internal/grading"
	"gradebetter/internal/middleware"
	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"
	repo "gradebetter/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func SubmissionRoutes(fr *repo.FirebaseRepository, aiClient *ai.Client, cfg *config.ServerConfig) *chi.Mux {
	router := chi.NewRouter()
	router.Use(auth.AuthCtx(fr, cfg))

	// Students submit answers and self-grade their own work.
	router.Post("/submit/{assignmentID}", createSubmissionHandler(fr))
	router.Post("/selfGrade/{submissionID}", selfGradeSubmissionHandler(fr))
	router.Get("/{submissionID}", getSubmissionHandler(fr))

	// Grading is instructor-only.
	router.Route("/assignment/{assignmentID}", func(r chi.Router) {
		r.Use(middleware.AssignmentCtx())
		r.Use(auth.RequireAssignmentInstructor(fr))

		r.Get("/problem/{problemID}", listSubmissionsHandler(fr))
		r.Post("/grade/{submissionID}", gradeSubmissionHandler(fr))
		r.Post("/gradeAll", bulkGradeHandler(fr, aiClient, cfg))
	})

	return router
}

// POST: /submit/{assignmentID}
func createSubmissionHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := chi.URLParam(r, "assignmentID")
		if !validateURLID(w, assignmentID) {
			return
		}

		user, err := auth.GetUserFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		var req *models.CreateSubmissionRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = assignmentID
		req.CreatedBy = user

		submission, err := fr.CreateSubmission(req)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, submission)
	}
}

// GET: /{submissionID}
func getSubmissionHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := chi.URLParam(r, "submissionID")
		if !validateURLID(w, submissionID) {
			return
		}

		submission, err := fr.GetSubmissionByID(submissionID)
		if err != nil {
			respondError(w, err)
			return
		}

		// Students may only read their own submissions.
		user, err := auth.GetUserFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		if submission.StudentID != user.ID && !user.IsAdmin {
			assignment, err := fr.GetAssignmentByID(submission.AssignmentID)
			if err != nil {
				respondError(w, err)
				return
			}
			course, err := fr.GetCourseByID(assignment.CourseID)
			if err != nil {
				respondError(w, err)
				return
			}
			if !course.HasInstructor(user.ID) {
				http.Error(w, "You do not have permission to access this resource", http.StatusForbidden)
				return
			}
		}

		render.JSON(w, r, submission)
	}
}

// GET: /assignment/{assignmentID}/problem/{problemID}
func listSubmissionsHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := chi.URLParam(r, "assignmentID")
		problemID := chi.URLParam(r, "problemID")
		if !validateURLID(w, assignmentID) || !validateURLID(w, problemID) {
			return
		}

		submissions, err := fr.SubmissionsForProblem(assignmentID, problemID)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, submissions)
	}
}

// POST: /assignment/{assignmentID}/grade/{submissionID}
func gradeSubmissionHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.GradeSubmissionRequest

		user, err := auth.GetUserFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.SubmissionID = chi.URLParam(r, "submissionID")
		req.GradedBy = user

		err = fr.GradeSubmission(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully graded submission " + req.SubmissionID))
	}
}

// POST: /selfGrade/{submissionID}
func selfGradeSubmissionHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
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

		submission, err := fr.GetSubmissionByID(submissionID)
		if err != nil {
			respondError(w, err)
			return
		}
		if submission.StudentID != user.ID {
			http.Error(w, "You do not have permission to access this resource", http.StatusForbidden)
			return
		}

		var req *models.SelfGradeSubmissionRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.SubmissionID = submissionID
		req.GradedBy = user

		err = fr.SelfGradeSubmission(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully self-graded submission " + req.SubmissionID))
	}
}

// POST: /assignment/{assignmentID}/gradeAll
//
// Streams newline-delimited JSON progress snapshots over a single long-lived
// response. Every snapshot is written and flushed synchronously from the
// progress callback, so no event is dropped under a slow reader. The final
// line carries complete=true. The run itself uses a detached context: a
// dropped client connection stops delivery but not the grading work.
func bulkGradeHandler(fr *repo.FirebaseRepository, aiClient *ai.Client, cfg *config.ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if aiClient == nil {
			respondError(w, qerrors.GradingFailedError)
			return
		}

		var req *models.BulkGradeRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		assignment, err := fr.GetAssignmentByID(req.AssignmentID)
		if err != nil {
			respondError(w, err)
			return
		}
		problem := assignment.ProblemByID(req.ProblemID)
		if problem == nil {
			respondError(w, qerrors.ProblemNotFoundError)
			return
		}

		limit := cfg.BulkGradingConcurrency
		if req.Concurrency > 0 {
			limit = req.Concurrency
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		var (
			writeLock sync.Mutex
			encoder   = json.NewEncoder(w)
			delivery  = true
		)
		onProgress := func(p grading.Progress) {
			writeLock.Lock()
			defer writeLock.Unlock()
			if !delivery {
				return
			}
			if err := encoder.Encode(p); err != nil {
				// The client went away; the grading run keeps going.
				glog.Warningf("progress delivery stopped: %v\n", err)
				delivery = false
				return
			}
			flusher.Flush()
		}

		orchestrator := grading.NewOrchestrator(fr, aiClient)
		err = orchestrator.GradeAll(context.Background(), assignment, problem, limit, onProgress)
		if err != nil {
			glog.Errorf("bulk grading failed: %v\n", err)
			writeLock.Lock()
			defer writeLock.Unlock()
			if delivery {
				encoder.Encode(map[string]string{"error": qerrors.GradingFailedError.Error()})
				flusher.Flush()
			}
		}
	}
}
