package qerrors

import "errors"

// Not-found errors. Returned when an entity is absent from the store.
var (
	CourseNotFoundError     = errors.New("course not found")
	AssignmentNotFoundError = errors.New("assignment not found")
	ProblemNotFoundError    = errors.New("problem not found")
	RubricItemNotFoundError = errors.New("rubric item not found")
	SubmissionNotFoundError = errors.New("submission not found")
	ReportNotFoundError     = errors.New("discrepancy report not found")
	UserNotFoundError       = errors.New("user not found")
)

// Validation errors. Detected at the boundary before any database access.
var (
	InvalidIDError        = errors.New("the provided identifier is not valid")
	InvalidBody           = errors.New("the request body is missing required fields")
	InvalidEmailError     = errors.New("invalid email address")
	InvalidDeadlinesError = errors.New("final submission deadline must not precede the due date")
)

// Policy violations. The request is well formed but the action is not
// permitted in the current state.
var (
	AssignmentNotPublishedError = errors.New("assignment is not accepting submissions")
	DeadlinePassedError         = errors.New("the final submission deadline has passed")
	NotEnrolledError            = errors.New("student is not enrolled in this course")
	RubricFinalizedError        = errors.New("rubric has been finalized and can no longer be edited")
	SelfGradingDisabledError    = errors.New("self grading is not enabled for this assignment")
	GradesNotReleasedError      = errors.New("grades have not been released for this assignment")
	ReportAlreadyResolvedError  = errors.New("discrepancy report has already been resolved")
)

// Upstream failures. An external service misbehaved; logged and surfaced to
// the caller as a generic server error.
var (
	GradingFailedError          = errors.New("grading failed")
	RubricGenerationFailedError = errors.New("rubric generation failed")
)

// Concurrency conflicts.
var (
	SubmissionConflictError = errors.New("a concurrent submission for the same problem was detected")
)

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	for _, target := range []error{
		CourseNotFoundError, AssignmentNotFoundError, ProblemNotFoundError,
		RubricItemNotFoundError, SubmissionNotFoundError, ReportNotFoundError,
		UserNotFoundError,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation reports whether err is one of the validation errors.
func IsValidation(err error) bool {
	for _, target := range []error{
		InvalidIDError, InvalidBody, InvalidEmailError, InvalidDeadlinesError,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsPolicyViolation reports whether err is one of the policy violation errors.
func IsPolicyViolation(err error) bool {
	for _, target := range []error{
		AssignmentNotPublishedError, DeadlinePassedError, NotEnrolledError,
		RubricFinalizedError, SelfGradingDisabledError, GradesNotReleasedError,
		ReportAlreadyResolvedError,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
