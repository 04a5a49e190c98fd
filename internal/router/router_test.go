package router

import (
	"testing"

	"github.com/go-chi/chi/v5"

	"gradebetter/internal/config"
)

func testConfig() *config.ServerConfig {
	return &config.ServerConfig{SessionCookieName: "gradebetter-session"}
}

func assertRoutes(t *testing.T, mux *chi.Mux, cases []struct {
	method  string
	path    string
	matched bool
}) {
	t.Helper()
	for _, c := range cases {
		rctx := chi.NewRouteContext()
		if got := mux.Match(rctx, c.method, c.path); got != c.matched {
			t.Errorf("%s %s: expected matched=%v, got %v", c.method, c.path, c.matched, got)
		}
	}
}

// The read endpoint and the mutation subroutes share the /{id} pattern node;
// both must stay routable.
func TestAssignmentRouteResolution(t *testing.T) {
	mux := AssignmentRoutes(nil, nil, testConfig())

	assertRoutes(t, mux, []struct {
		method  string
		path    string
		matched bool
	}{
		{"GET", "/abc123", true},
		{"POST", "/create", true},
		{"POST", "/abc123/edit", true},
		{"POST", "/abc123/publish", true},
		{"POST", "/abc123/problems/add", true},
		{"POST", "/abc123/rubric/finalize", true},
		{"POST", "/abc123/rubric/unfinalize", true},
		{"POST", "/abc123/rubric/generate", true},
		{"GET", "/abc123/bogus", false},
		{"DELETE", "/abc123", false},
	})
}

func TestCourseRouteResolution(t *testing.T) {
	mux := CourseRoutes(nil, testConfig())

	assertRoutes(t, mux, []struct {
		method  string
		path    string
		matched bool
	}{
		{"GET", "/abc123", true},
		{"POST", "/create", true},
		{"POST", "/abc123/edit", true},
		{"POST", "/abc123/enroll", true},
		{"POST", "/abc123/removeStaff", true},
		{"GET", "/abc123/bogus", false},
	})
}

func TestSubmissionRouteResolution(t *testing.T) {
	mux := SubmissionRoutes(nil, nil, testConfig())

	assertRoutes(t, mux, []struct {
		method  string
		path    string
		matched bool
	}{
		{"GET", "/sub1", true},
		{"POST", "/submit/asgn1", true},
		{"POST", "/selfGrade/sub1", true},
		{"GET", "/assignment/asgn1/problem/p1", true},
		{"POST", "/assignment/asgn1/grade/sub1", true},
		{"POST", "/assignment/asgn1/gradeAll", true},
	})
}

func TestDiscrepancyRouteResolution(t *testing.T) {
	mux := DiscrepancyRoutes(nil, testConfig())

	assertRoutes(t, mux, []struct {
		method  string
		path    string
		matched bool
	}{
		{"POST", "/file/sub1", true},
		{"GET", "/submission/sub1", true},
		{"GET", "/assignment/asgn1", true},
		{"POST", "/assignment/asgn1/resolve/sub1", true},
	})
}
