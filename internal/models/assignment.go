package models

import "time"

var (
	FirestoreAssignmentsCollection = "assignments"
)

type GradingStatus string

const (
	GradingNotStarted GradingStatus = "not-started"
	GradingInProgress GradingStatus = "in-progress"
	GradingCompleted  GradingStatus = "completed"
)

// RubricItem is a signed-point criterion that is either applied or not applied
// to a submission. Its ID stays stable across rubric edits that reorder items,
// since submissions and discrepancy reports reference items by ID.
type RubricItem struct {
	ID          string `json:"id" mapstructure:"id"`
	Description string `json:"description" mapstructure:"description"`
	Points      int    `json:"points" mapstructure:"points"`
}

// Problem is a single question within an assignment, carrying its own rubric.
// Problems are embedded in their assignment and have no independent lifecycle.
type Problem struct {
	ID                string        `json:"id" mapstructure:"id"`
	Question          string        `json:"question" mapstructure:"question"`
	ReferenceSolution string        `json:"referenceSolution,omitempty" mapstructure:"referenceSolution"`
	MaxPoints         int           `json:"maxPoints" mapstructure:"maxPoints"`
	RubricItems       []*RubricItem `json:"rubricItems" mapstructure:"rubricItems"`
	RubricFinalized   bool          `json:"rubricFinalized" mapstructure:"rubricFinalized"`
}

// RubricItemByID returns the rubric item with the given ID, or nil.
func (p *Problem) RubricItemByID(id string) *RubricItem {
	for _, item := range p.RubricItems {
		if item.ID == id {
			return item
		}
	}
	return nil
}

type Assignment struct {
	ID                      string        `json:"id" mapstructure:"id"`
	CourseID                string        `json:"courseID" mapstructure:"courseID"`
	Title                   string        `json:"title" mapstructure:"title"`
	Description             string        `json:"description" mapstructure:"description"`
	DueDate                 time.Time     `json:"dueDate" mapstructure:"dueDate"`
	FinalSubmissionDeadline time.Time     `json:"finalSubmissionDeadline" mapstructure:"finalSubmissionDeadline"`
	Published               bool          `json:"published" mapstructure:"published"`
	GradesReleased          bool          `json:"gradesReleased" mapstructure:"gradesReleased"`
	SelfGradingEnabled      bool          `json:"selfGradingEnabled" mapstructure:"selfGradingEnabled"`
	Problems                []*Problem    `json:"problems" mapstructure:"problems"`
	GradingStatus           GradingStatus `json:"gradingStatus" mapstructure:"gradingStatus"`
}

// ProblemByID returns the embedded problem with the given ID, or nil.
func (a *Assignment) ProblemByID(id string) *Problem {
	for _, problem := range a.Problems {
		if problem.ID == id {
			return problem
		}
	}
	return nil
}

type GetAssignmentRequest struct {
	AssignmentID string `json:"assignmentID"`
}

type CreateAssignmentRequest struct {
	CourseID                string    `json:"courseID"`
	Title                   string    `json:"title"`
	Description             string    `json:"description"`
	DueDate                 time.Time `json:"dueDate"`
	FinalSubmissionDeadline time.Time `json:"finalSubmissionDeadline"`
	CreatedBy               *User     `json:",omitempty"`
}

type EditAssignmentRequest struct {
	AssignmentID            string    `json:"assignmentID,omitempty"`
	Title                   string    `json:"title"`
	Description             string    `json:"description"`
	DueDate                 time.Time `json:"dueDate"`
	FinalSubmissionDeadline time.Time `json:"finalSubmissionDeadline"`
}

type DeleteAssignmentRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
}

// PublishAssignmentRequest is the parameter struct to the PublishAssignment function.
type PublishAssignmentRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	Published    bool   `json:"published"`
}

// ReleaseGradesRequest is the parameter struct to the ReleaseGrades function.
type ReleaseGradesRequest struct {
	AssignmentID   string `json:"assignmentID,omitempty"`
	GradesReleased bool   `json:"gradesReleased"`
}

// SetSelfGradingRequest is the parameter struct to the SetSelfGrading function.
type SetSelfGradingRequest struct {
	AssignmentID       string `json:"assignmentID,omitempty"`
	SelfGradingEnabled bool   `json:"selfGradingEnabled"`
}

// AddProblemRequest is the parameter struct to the AddProblem function.
type AddProblemRequest struct {
	AssignmentID      string `json:"assignmentID,omitempty"`
	Question          string `json:"question"`
	ReferenceSolution string `json:"referenceSolution"`
	MaxPoints         int    `json:"maxPoints"`
}

// EditProblemRequest is the parameter struct to the EditProblem function.
type EditProblemRequest struct {
	AssignmentID      string `json:"assignmentID,omitempty"`
	ProblemID         string `json:"problemID"`
	Question          string `json:"question"`
	ReferenceSolution string `json:"referenceSolution"`
	MaxPoints         int    `json:"maxPoints"`
}

// DeleteProblemRequest is the parameter struct to the DeleteProblem function.
type DeleteProblemRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	ProblemID    string `json:"problemID"`
}

// AddRubricItemRequest is the parameter struct to the AddRubricItem function.
type AddRubricItemRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	ProblemID    string `json:"problemID"`
	Description  string `json:"description"`
	Points       int    `json:"points"`
}

// EditRubricItemRequest is the parameter struct to the EditRubricItem function.
type EditRubricItemRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	ProblemID    string `json:"problemID"`
	RubricItemID string `json:"rubricItemID"`
	Description  string `json:"description"`
	Points       int    `json:"points"`
}

// DeleteRubricItemRequest is the parameter struct to the DeleteRubricItem function.
type DeleteRubricItemRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	ProblemID    string `json:"problemID"`
	RubricItemID string `json:"rubricItemID"`
}

// FinalizeRubricRequest is the parameter struct to the FinalizeRubric and
// UnfinalizeRubric functions.
type FinalizeRubricRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	ProblemID    string `json:"problemID"`
}

// GenerateRubricRequest is the parameter struct to the GenerateRubric function.
type GenerateRubricRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	ProblemID    string `json:"problemID"`
	Context      string `json:"context"`
}
