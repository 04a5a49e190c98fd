package models

import "time"

var (
	FirestoreSubmissionsCollection = "submissions"
)

type SelfGradingStatus string

const (
	SelfGradingNotStarted SelfGradingStatus = "not-started"
	SelfGradingCompleted  SelfGradingStatus = "completed"
)

// Submission is a student's answer to one problem, plus its grading state.
// At most one submission exists per (assignment, problem, student) triple;
// resubmission updates the record in place and resets the grading fields.
type Submission struct {
	ID           string    `json:"id" mapstructure:"id"`
	AssignmentID string    `json:"assignmentID" mapstructure:"assignmentID"`
	ProblemID    string    `json:"problemID" mapstructure:"problemID"`
	StudentID    string    `json:"studentID" mapstructure:"studentID"`
	Answer       string    `json:"answer" mapstructure:"answer"`
	SubmittedAt  time.Time `json:"submittedAt" mapstructure:"submittedAt"`

	Graded               bool      `json:"graded" mapstructure:"graded"`
	GradedBy             string    `json:"gradedBy,omitempty" mapstructure:"gradedBy"`
	GradedAt             time.Time `json:"gradedAt,omitempty" mapstructure:"gradedAt"`
	AppliedRubricItemIDs []string  `json:"appliedRubricItemIDs" mapstructure:"appliedRubricItemIDs"`
	Feedback             string    `json:"feedback,omitempty" mapstructure:"feedback"`

	SelfGraded               bool              `json:"selfGraded" mapstructure:"selfGraded"`
	SelfGradingStatus        SelfGradingStatus `json:"selfGradingStatus" mapstructure:"selfGradingStatus"`
	SelfAppliedRubricItemIDs []string          `json:"selfAppliedRubricItemIDs" mapstructure:"selfAppliedRubricItemIDs"`
	SelfGradedAt             time.Time         `json:"selfGradedAt,omitempty" mapstructure:"selfGradedAt"`

	DiscrepancyReportIDs []string `json:"discrepancyReportIDs" mapstructure:"discrepancyReportIDs"`
}

// CreateSubmissionRequest is the parameter struct to the CreateSubmission function.
type CreateSubmissionRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	ProblemID    string `json:"problemID"`
	Answer       string `json:"answer"`
	CreatedBy    *User  `json:",omitempty"`
}

// GetSubmissionRequest is the parameter struct to the GetSubmission function.
type GetSubmissionRequest struct {
	SubmissionID string `json:"submissionID"`
}

// ListSubmissionsRequest is the parameter struct to the ListSubmissions function.
type ListSubmissionsRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	ProblemID    string `json:"problemID"`
}

// GradeSubmissionRequest is the parameter struct to the GradeSubmission function.
type GradeSubmissionRequest struct {
	SubmissionID         string   `json:"submissionID,omitempty"`
	AppliedRubricItemIDs []string `json:"appliedRubricItemIDs"`
	Feedback             string   `json:"feedback"`
	GradedBy             *User    `json:",omitempty"`
}

// SelfGradeSubmissionRequest is the parameter struct to the SelfGradeSubmission function.
type SelfGradeSubmissionRequest struct {
	SubmissionID         string   `json:"submissionID,omitempty"`
	AppliedRubricItemIDs []string `json:"appliedRubricItemIDs"`
	GradedBy             *User    `json:",omitempty"`
}

// BulkGradeRequest is the parameter struct to the bulk grading operation.
type BulkGradeRequest struct {
	AssignmentID string `json:"assignmentID,omitempty"`
	ProblemID    string `json:"problemID"`
	// Concurrency overrides the configured ceiling on outstanding grading
	// calls when positive.
	Concurrency int `json:"concurrency,omitempty"`
}
