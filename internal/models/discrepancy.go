package models

import "time"

var (
	FirestoreDiscrepancyReportsCollection = "discrepancy_reports"
)

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
)

// Resolution records an instructor's final determination on a report.
type Resolution struct {
	ShouldApply bool      `json:"shouldApply" mapstructure:"shouldApply"`
	Explanation string    `json:"explanation" mapstructure:"explanation"`
	ResolvedBy  string    `json:"resolvedBy" mapstructure:"resolvedBy"`
	ResolvedAt  time.Time `json:"resolvedAt" mapstructure:"resolvedAt"`
}

// DiscrepancyReport is a student's formal dispute of one rubric item's
// application to their submission. One report exists per
// (submission, rubricItem) pair; re-filing overwrites the pending report.
type DiscrepancyReport struct {
	ID           string `json:"id" mapstructure:"id"`
	SubmissionID string `json:"submissionID" mapstructure:"submissionID"`
	ProblemID    string `json:"problemID" mapstructure:"problemID"`
	StudentID    string `json:"studentID" mapstructure:"studentID"`
	CourseID     string `json:"courseID" mapstructure:"courseID"`
	AssignmentID string `json:"assignmentID" mapstructure:"assignmentID"`
	RubricItemID string `json:"rubricItemID" mapstructure:"rubricItemID"`

	WasOriginallyApplied bool   `json:"wasOriginallyApplied" mapstructure:"wasOriginallyApplied"`
	StudentClaimsApplied bool   `json:"studentClaimsApplied" mapstructure:"studentClaimsApplied"`
	Explanation          string `json:"explanation" mapstructure:"explanation"`

	Status     ReportStatus `json:"status" mapstructure:"status"`
	Resolution *Resolution  `json:"resolution,omitempty" mapstructure:"resolution"`
}

// AccumulatedReportStatus summarizes a set of reports: pending if any report
// is still pending, resolved otherwise. An empty set is resolved.
func AccumulatedReportStatus(reports []*DiscrepancyReport) ReportStatus {
	for _, r := range reports {
		if r.Status == ReportPending {
			return ReportPending
		}
	}
	return ReportResolved
}

// FileReportRequest is the parameter struct to the FileReport function.
type FileReportRequest struct {
	SubmissionID         string `json:"submissionID,omitempty"`
	RubricItemID         string `json:"rubricItemID"`
	WasOriginallyApplied bool   `json:"wasOriginallyApplied"`
	StudentClaimsApplied bool   `json:"studentClaimsApplied"`
	Explanation          string `json:"explanation"`
	FiledBy              *User  `json:",omitempty"`
}

// ResolveReportRequest is the parameter struct to the ResolveReport function.
type ResolveReportRequest struct {
	SubmissionID string `json:"submissionID,omitempty"`
	RubricItemID string `json:"rubricItemID"`
	ShouldApply  bool   `json:"shouldApply"`
	Explanation  string `json:"explanation"`
	ResolvedBy   *User  `json:",omitempty"`
}

// ListReportsRequest is the parameter struct to the report listing functions.
type ListReportsRequest struct {
	SubmissionID string `json:"submissionID,omitempty"`
	AssignmentID string `json:"assignmentID,omitempty"`
}
