package grading

import (
	"errors"
	"testing"
	"time"

	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"
)

func createAssignment() (*models.Course, *models.Assignment) {
	course := &models.Course{
		ID:         "cs200",
		StudentIDs: []string{"alice", "bob"},
	}
	assignment := &models.Assignment{
		ID:                      "hw1",
		CourseID:                course.ID,
		Published:               true,
		DueDate:                 time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		FinalSubmissionDeadline: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
		Problems:                []*models.Problem{createProblem()},
	}
	return course, assignment
}

func TestCheckSubmitPolicy(t *testing.T) {
	course, assignment := createAssignment()

	// Late submissions are accepted until the final deadline.
	now := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	if err := CheckSubmitPolicy(course, assignment, "p1", "alice", now); err != nil {
		t.Errorf("expected submission to be accepted, got %v", err)
	}

	// The day after the final deadline it always fails, no matter how often tried.
	after := time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := CheckSubmitPolicy(course, assignment, "p1", "alice", after)
		if !errors.Is(err, qerrors.DeadlinePassedError) {
			t.Errorf("expected DeadlinePassedError, got %v", err)
		}
	}
}

func TestCheckSubmitPolicyFailureOrder(t *testing.T) {
	course, assignment := createAssignment()
	now := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		course     *models.Course
		assignment *models.Assignment
		problemID  string
		studentID  string
		expected   error
	}{
		{"missing assignment", course, nil, "p1", "alice", qerrors.AssignmentNotFoundError},
		{"unpublished assignment", course, unpublished(assignment), "p1", "alice", qerrors.AssignmentNotPublishedError},
		{"missing problem", course, assignment, "p999", "alice", qerrors.ProblemNotFoundError},
		{"unenrolled student", course, assignment, "p1", "mallory", qerrors.NotEnrolledError},
		{"missing course", nil, assignment, "p1", "alice", qerrors.NotEnrolledError},
	}

	for _, c := range cases {
		err := CheckSubmitPolicy(c.course, c.assignment, c.problemID, c.studentID, now)
		if !errors.Is(err, c.expected) {
			t.Errorf("%s: expected %v, got %v", c.name, c.expected, err)
		}
	}
}

func unpublished(a *models.Assignment) *models.Assignment {
	copied := *a
	copied.Published = false
	return &copied
}

func TestCheckSelfGradePolicy(t *testing.T) {
	_, assignment := createAssignment()

	if err := CheckSelfGradePolicy(assignment); !errors.Is(err, qerrors.SelfGradingDisabledError) {
		t.Errorf("expected SelfGradingDisabledError, got %v", err)
	}

	assignment.SelfGradingEnabled = true
	if err := CheckSelfGradePolicy(assignment); !errors.Is(err, qerrors.GradesNotReleasedError) {
		t.Errorf("expected GradesNotReleasedError, got %v", err)
	}

	assignment.GradesReleased = true
	if err := CheckSelfGradePolicy(assignment); err != nil {
		t.Errorf("expected self grading to be allowed, got %v", err)
	}
}

func TestCheckRubricEditable(t *testing.T) {
	problem := createProblem()

	if err := CheckRubricEditable(problem); err != nil {
		t.Errorf("expected drafted rubric to be editable, got %v", err)
	}

	problem.RubricFinalized = true
	if err := CheckRubricEditable(problem); !errors.Is(err, qerrors.RubricFinalizedError) {
		t.Errorf("expected RubricFinalizedError, got %v", err)
	}

	if err := CheckRubricEditable(nil); !errors.Is(err, qerrors.ProblemNotFoundError) {
		t.Errorf("expected ProblemNotFoundError, got %v", err)
	}
}
