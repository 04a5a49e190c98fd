package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func CourseCtx() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			courseID := chi.URLParam(r, "courseID")

			ctx := context.WithValue(r.Context(), "courseID", courseID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AssignmentCtx() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assignmentID := chi.URLParam(r, "assignmentID")

			ctx := context.WithValue(r.Context(), "assignmentID", assignmentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
