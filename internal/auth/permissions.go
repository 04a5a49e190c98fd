package auth

import (
	"net/http"

	"gradebetter/internal/models"
	"gradebetter/internal/repository"
)

// RequireCourseInstructor is a middleware that rejects requests from users who
// don't teach the course in the request context. Must be nested inside
// AuthCtx and a middleware that sets "courseID".
func RequireCourseInstructor(repo *repository.FirebaseRepository) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := GetUserFromRequest(r)
			if err != nil {
				rejectUnauthorizedRequest(w)
				return
			}

			courseID, _ := r.Context().Value("courseID").(string)
			course, err := repo.GetCourseByID(courseID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}

			if !hasInstructorPermission(user, course) {
				rejectForbiddenRequest(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAssignmentInstructor is like RequireCourseInstructor, resolving the
// course through the assignment in the request context. Must be nested inside
// AuthCtx and a middleware that sets "assignmentID".
func RequireAssignmentInstructor(repo *repository.FirebaseRepository) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := GetUserFromRequest(r)
			if err != nil {
				rejectUnauthorizedRequest(w)
				return
			}

			assignmentID, _ := r.Context().Value("assignmentID").(string)
			assignment, err := repo.GetAssignmentByID(assignmentID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}

			course, err := repo.GetCourseByID(assignment.CourseID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}

			if !hasInstructorPermission(user, course) {
				rejectForbiddenRequest(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasInstructorPermission(u *models.User, course *models.Course) bool {
	if u.IsAdmin {
		return true
	}

	return course.HasInstructor(u.ID)
}
