package repository

import (
	"context"
	"fmt"
	"time"

	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"

	"cloud.google.com/go/firestore"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// reportDocID keys a discrepancy report on the (submission, rubricItem) pair,
// so a student can hold at most one report per disputed item.
func reportDocID(submissionID, rubricItemID string) string {
	return fmt.Sprintf("%s_%s", submissionID, rubricItemID)
}

// FileReport creates or overwrites the pending discrepancy report for the
// (submission, rubricItem) pair. Re-filing updates the pending explanation
// instead of duplicating; a report that was already resolved stays resolved.
func (fr *FirebaseRepository) FileReport(c *models.FileReportRequest) (*models.DiscrepancyReport, error) {
	submission, err := fr.GetSubmissionByID(c.SubmissionID)
	if err != nil {
		return nil, err
	}

	assignment, err := fr.GetAssignmentByID(submission.AssignmentID)
	if err != nil {
		return nil, err
	}

	problem := assignment.ProblemByID(submission.ProblemID)
	if problem == nil {
		return nil, qerrors.ProblemNotFoundError
	}
	if problem.RubricItemByID(c.RubricItemID) == nil {
		return nil, qerrors.RubricItemNotFoundError
	}

	report := &models.DiscrepancyReport{
		ID:                   reportDocID(c.SubmissionID, c.RubricItemID),
		SubmissionID:         submission.ID,
		ProblemID:            submission.ProblemID,
		StudentID:            c.FiledBy.ID,
		CourseID:             assignment.CourseID,
		AssignmentID:         assignment.ID,
		RubricItemID:         c.RubricItemID,
		WasOriginallyApplied: c.WasOriginallyApplied,
		StudentClaimsApplied: c.StudentClaimsApplied,
		Explanation:          c.Explanation,
		Status:               models.ReportPending,
	}

	ref := fr.firestoreClient.Collection(models.FirestoreDiscrepancyReportsCollection).Doc(report.ID)
	err = fr.firestoreClient.RunTransaction(fr.ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if doc != nil && doc.Exists() {
			var existing models.DiscrepancyReport
			if err := mapstructure.Decode(doc.Data(), &existing); err != nil {
				return err
			}

			updates, err := refileUpdates(&existing, report)
			if err != nil {
				return err
			}
			return tx.Update(ref, updates)
		}

		return tx.Set(ref, map[string]interface{}{
			"id":                   report.ID,
			"submissionID":         report.SubmissionID,
			"problemID":            report.ProblemID,
			"studentID":            report.StudentID,
			"courseID":             report.CourseID,
			"assignmentID":         report.AssignmentID,
			"rubricItemID":         report.RubricItemID,
			"wasOriginallyApplied": report.WasOriginallyApplied,
			"studentClaimsApplied": report.StudentClaimsApplied,
			"explanation":          report.Explanation,
			"status":               report.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	// Track the report on its submission.
	_, err = fr.firestoreClient.Collection(models.FirestoreSubmissionsCollection).Doc(submission.ID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "discrepancyReportIDs",
			Value: firestore.ArrayUnion(report.ID),
		},
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// refileUpdates decides how a new filing lands on an existing report. A
// resolved report stays resolved and cannot be re-filed; a pending one has
// its claim and explanation overwritten in place, never duplicated.
func refileUpdates(existing, filed *models.DiscrepancyReport) ([]firestore.Update, error) {
	if existing.Status == models.ReportResolved {
		return nil, qerrors.ReportAlreadyResolvedError
	}

	return []firestore.Update{
		{Path: "wasOriginallyApplied", Value: filed.WasOriginallyApplied},
		{Path: "studentClaimsApplied", Value: filed.StudentClaimsApplied},
		{Path: "explanation", Value: filed.Explanation},
	}, nil
}

// ResolveReport transitions the pending report for the (submission,
// rubricItem) pair to resolved, stamping the resolution block. Resolution
// never mutates the submission's applied rubric item set; re-grading is a
// separate, explicit action.
func (fr *FirebaseRepository) ResolveReport(c *models.ResolveReportRequest) error {
	ref := fr.firestoreClient.Collection(models.FirestoreDiscrepancyReportsCollection).Doc(reportDocID(c.SubmissionID, c.RubricItemID))

	return fr.firestoreClient.RunTransaction(fr.ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return qerrors.ReportNotFoundError
			}
			return err
		}

		var report models.DiscrepancyReport
		if err := mapstructure.Decode(doc.Data(), &report); err != nil {
			return err
		}
		if report.Status == models.ReportResolved {
			return qerrors.ReportAlreadyResolvedError
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: models.ReportResolved},
			{Path: "resolution", Value: map[string]interface{}{
				"shouldApply": c.ShouldApply,
				"explanation": c.Explanation,
				"resolvedBy":  c.ResolvedBy.ID,
				"resolvedAt":  time.Now(),
			}},
		})
	})
}

// ReportsForSubmission returns every report filed against a submission.
func (fr *FirebaseRepository) ReportsForSubmission(submissionID string) ([]*models.DiscrepancyReport, error) {
	return fr.queryReports("submissionID", submissionID)
}

// ReportsForAssignment returns every report filed against an assignment's
// submissions.
func (fr *FirebaseRepository) ReportsForAssignment(assignmentID string) ([]*models.DiscrepancyReport, error) {
	return fr.queryReports("assignmentID", assignmentID)
}

func (fr *FirebaseRepository) queryReports(field, value string) ([]*models.DiscrepancyReport, error) {
	iter := fr.firestoreClient.Collection(models.FirestoreDiscrepancyReportsCollection).
		Where(field, "==", value).
		Documents(fr.ctx)

	var reports []*models.DiscrepancyReport
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing discrepancy reports: %v", err)
		}

		var report models.DiscrepancyReport
		if err := mapstructure.Decode(doc.Data(), &report); err != nil {
			return nil, err
		}
		report.ID = doc.Ref.ID
		reports = append(reports, &report)
	}

	return reports, nil
}
