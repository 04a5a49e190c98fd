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

func CourseRoutes(fr *repo.FirebaseRepository, cfg *config.ServerConfig) *chi.Mux {
	router := chi.NewRouter()
	router.Use(auth.AuthCtx(fr, cfg))

	// Creating a course requires nothing beyond a session; the creator
	// becomes its instructor.
	router.Post("/create", createCourseHandler(fr))

	router.Route("/{courseID}", func(r chi.Router) {
		r.Use(middleware.CourseCtx())

		// Get metadata about a course
		r.Get("/", getCourseHandler(fr))

		// Everything else is instructor-only.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireCourseInstructor(fr))

			r.Post("/edit", editCourseHandler(fr))
			r.Post("/delete", deleteCourseHandler(fr))
			r.Post("/enroll", enrollStudentHandler(fr))
			r.Post("/addStaff", addCourseStaffHandler(fr))
			r.Post("/removeStaff", removeCourseStaffHandler(fr))
		})
	})

	return router
}

// GET: /{courseID}
func getCourseHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !validateURLID(w, courseID) {
			return
		}

		course, err := fr.GetCourseByID(courseID)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, course)
	}
}

// POST: /create
func createCourseHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.CreateCourseRequest

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

		c, err := fr.CreateCourse(req)
		if err != nil {
			respondError(w, err)
			return
		}

		render.JSON(w, r, c)
	}
}

// POST: /{courseID}/edit
func editCourseHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.EditCourseRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.CourseID = chi.URLParam(r, "courseID")

		err = fr.EditCourse(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully edited course " + req.CourseID))
	}
}

// POST: /{courseID}/delete
func deleteCourseHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")

		err := fr.DeleteCourse(&models.DeleteCourseRequest{CourseID: courseID})
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully deleted course " + courseID))
	}
}

// POST: /{courseID}/enroll
func enrollStudentHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.EnrollStudentRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.CourseID = chi.URLParam(r, "courseID")

		err = fr.EnrollStudent(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully enrolled " + req.Email))
	}
}

// POST: /{courseID}/addStaff
func addCourseStaffHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.AddCourseStaffRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.CourseID = chi.URLParam(r, "courseID")

		err = fr.AddCourseStaff(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully added staff to " + req.CourseID))
	}
}

// POST: /{courseID}/removeStaff
func removeCourseStaffHandler(fr *repo.FirebaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *models.RemoveCourseStaffRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.CourseID = chi.URLParam(r, "courseID")

		err = fr.RemoveCourseStaff(req)
		if err != nil {
			respondError(w, err)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte("Successfully removed staff from " + req.CourseID))
	}
}
