package grading

import (
	"time"

	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"
)

// CheckSubmitPolicy verifies that a student may submit an answer to the given
// problem right now. The checks run in a fixed order, each with its own
// failure: the assignment must exist, be published, contain the problem, the
// student must be enrolled, and the final submission deadline must not have
// passed.
func CheckSubmitPolicy(course *models.Course, assignment *models.Assignment, problemID, studentID string, now time.Time) error {
	if assignment == nil {
		return qerrors.AssignmentNotFoundError
	}
	if !assignment.Published {
		return qerrors.AssignmentNotPublishedError
	}
	if assignment.ProblemByID(problemID) == nil {
		return qerrors.ProblemNotFoundError
	}
	if course == nil || !course.HasStudent(studentID) {
		return qerrors.NotEnrolledError
	}
	if now.After(assignment.FinalSubmissionDeadline) {
		return qerrors.DeadlinePassedError
	}
	return nil
}

// CheckSelfGradePolicy verifies that a student may self-grade their
// submission: the assignment must have self grading enabled and grades must
// have been released.
func CheckSelfGradePolicy(assignment *models.Assignment) error {
	if assignment == nil {
		return qerrors.AssignmentNotFoundError
	}
	if !assignment.SelfGradingEnabled {
		return qerrors.SelfGradingDisabledError
	}
	if !assignment.GradesReleased {
		return qerrors.GradesNotReleasedError
	}
	return nil
}

// CheckRubricEditable verifies that the problem's rubric is still open for
// edits. Once finalized, rubric items may only be changed after an explicit
// unfinalize.
func CheckRubricEditable(problem *models.Problem) error {
	if problem == nil {
		return qerrors.ProblemNotFoundError
	}
	if problem.RubricFinalized {
		return qerrors.RubricFinalizedError
	}
	return nil
}
