package router

import (
	"encoding/json"
	"net/http"

	"gradebetter/internal/ai"
	"gradebetter/internal/auth"
	"gradebetter/internal/config"
	"gradebetter/internal/middleware"
	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"
	repo "gradebetter/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func AssignmentRoutes(fr *repo.FirebaseRepository, aiClient *ai.Client, cfg *config.ServerConfig) *chi.Mux {
	router := chi.NewRouter()
	router.Use(auth.AuthCtx(fr, cfg))

	router.Post("/create", createAssignmentHandler(fr))

	router.Route("/{assignmentID}", func(r chi.Router) {
		r.Use(middleware.AssignmentCtx())

		r.Get("/", getAssignmentHandler(fr))

		// Mutations are instructor-only.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAssignmentInstructor(fr))

			r.Post("/edit", editAssignmentHandler(fr))
			r.Post("/delete", deleteAssignmentHandler(fr))
			r.Post("/publish", publishAssignmentHandler(fr))
			r.Post("/releaseGrades", releaseGradesHandler(fr))
			r.Post("/selfGrading", setSelfGradingHandler(fr))

			r.Post("/problems/add", addProblemHandler(fr))
			r.Post("/problems/edit", editProblemHandler(fr))
			r.Post("/problems/delete", deleteProblemHandler(fr))

			r.Post("/rubric/add", addRubricItemHandler(fr))
			r.Post("/rubric/edit", editRubricItemHandler(fr))
			r.Post("/rubric/delete", deleteRubricItemHandler(fr))
			r.Post("/rubric/finalize", finalizeRubricHandler(fr))
			r.Post("/rubric/unfinalize", unfinalizeRubricHandler(fr))
			r.Post("/rubric/generate", generateRubricHandler(fr, aiClient))
		})
	})

	return router
}

// GET: /{assignmentID}
func getAssignmentHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := chi.URLParam(r, "assignmentID")
		if !validateURLID(w, assignmentID) {
			return
		}

		assignment, err := fr.GetAssignmentByID(assignmentID)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, assignment)
	}
}

// POST: /create
func createAssignmentHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.CreateAssignmentRequest

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
		req.CreatedBy = user

		// Only an instructor of the target course may create assignments in it.
		course, err := fr.GetCourseByID(req.CourseID)
		if err != nil {
			respondError(w, err)
			return
		}
		if !course.HasInstructor(user.ID) && !user.IsAdmin {
			http.Error(w, "You do not have permission to access this resource", http.StatusForbidden)
			return
		}

		assignment, err := fr.CreateAssignment(req)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, assignment)
	}
}

// POST: /{assignmentID}/edit
func editAssignmentHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.EditAssignmentRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.EditAssignment(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully edited assignment " + req.AssignmentID))
	}
}

// POST: /{assignmentID}/delete
func deleteAssignmentHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := chi.URLParam(r, "assignmentID")

		err := fr.DeleteAssignment(&models.DeleteAssignmentRequest{AssignmentID: assignmentID})
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully deleted assignment " + assignmentID))
	}
}

// POST: /{assignmentID}/publish
func publishAssignmentHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.PublishAssignmentRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.PublishAssignment(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully updated assignment " + req.AssignmentID))
	}
}

// POST: /{assignmentID}/releaseGrades
func releaseGradesHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.ReleaseGradesRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.ReleaseGrades(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully updated assignment " + req.AssignmentID))
	}
}

// POST: /{assignmentID}/selfGrading
func setSelfGradingHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.SetSelfGradingRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.SetSelfGrading(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully updated assignment " + req.AssignmentID))
	}
}

// POST: /{assignmentID}/problems/add
func addProblemHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.AddProblemRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		problem, err := fr.AddProblem(req)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, problem)
	}
}

// POST: /{assignmentID}/problems/edit
func editProblemHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.EditProblemRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.EditProblem(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully edited problem " + req.ProblemID))
	}
}

// POST: /{assignmentID}/problems/delete
func deleteProblemHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.DeleteProblemRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.DeleteProblem(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully deleted problem " + req.ProblemID))
	}
}

// POST: /{assignmentID}/rubric/add
func addRubricItemHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.AddRubricItemRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		item, err := fr.AddRubricItem(req)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, item)
	}
}

// POST: /{assignmentID}/rubric/edit
func editRubricItemHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.EditRubricItemRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.EditRubricItem(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully edited rubric item " + req.RubricItemID))
	}
}

// POST: /{assignmentID}/rubric/delete
func deleteRubricItemHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.DeleteRubricItemRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.DeleteRubricItem(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully deleted rubric item " + req.RubricItemID))
	}
}

// POST: /{assignmentID}/rubric/finalize
func finalizeRubricHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.FinalizeRubricRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.FinalizeRubric(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully finalized rubric for problem " + req.ProblemID))
	}
}

// POST: /{assignmentID}/rubric/unfinalize
func unfinalizeRubricHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.FinalizeRubricRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.AssignmentID = chi.URLParam(r, "assignmentID")

		err = fr.UnfinalizeRubric(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully unfinalized rubric for problem " + req.ProblemID))
	}
}

// POST: /{assignmentID}/rubric/generate
func generateRubricHandler(fr *repo.FirebaseRepository, aiClient *ai.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if aiClient == nil {
			respondError(w, qerrors.RubricGenerationFailedError)
			return
		}

		var req *models.GenerateRubricRequest

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

		generated, err := aiClient.GenerateRubric(r.Context(), problem.Question, problem.ReferenceSolution, req.Context)
		if err != nil {
			respondError(w, err)
			return
		}

		items := make([]*models.RubricItem, 0, len(generated))
		for _, g := range generated {
			items = append(items, &models.RubricItem{Description: g.Description, Points: g.Points})
		}

		if err := fr.AddGeneratedRubricItems(req.AssignmentID, req.ProblemID, items); err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, items)
	}
}
