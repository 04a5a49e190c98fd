package repository

import (
	"context"
	"fmt"
	"time"

	"gradebetter/internal/grading"
	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"

	"cloud.google.com/go/firestore"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// submissionDocID is the deterministic document ID for the one submission a
// student may have per (assignment, problem) pair. Keying the document on the
// triple makes the create-or-update path an atomic upsert: two concurrent
// submissions for the same triple land on the same document.
func submissionDocID(assignmentID, problemID, studentID string) string {
	return fmt.Sprintf("%s_%s_%s", assignmentID, problemID, studentID)
}

// CreateSubmission creates or updates the submission for the
// (assignment, problem, student) triple. Preconditions are checked in order:
// assignment exists, is published, contains the problem, the student is
// enrolled, and the final deadline hasn't passed. A resubmission overwrites
// the answer and resets all instructor-grading state; discrepancy report
// references survive.
func (fr *FirebaseRepository) CreateSubmission(c *models.CreateSubmissionRequest) (*models.Submission, error) {
	assignment, _ := fr.GetAssignmentByID(c.AssignmentID)

	var course *models.Course
	if assignment != nil {
		course, _ = fr.GetCourseByID(assignment.CourseID)
	}

	if err := grading.CheckSubmitPolicy(course, assignment, c.ProblemID, c.CreatedBy.ID, time.Now()); err != nil {
		return nil, err
	}

	submission := &models.Submission{
		ID:                       submissionDocID(c.AssignmentID, c.ProblemID, c.CreatedBy.ID),
		AssignmentID:             c.AssignmentID,
		ProblemID:                c.ProblemID,
		StudentID:                c.CreatedBy.ID,
		Answer:                   c.Answer,
		SubmittedAt:              time.Now(),
		AppliedRubricItemIDs:     []string{},
		SelfGradingStatus:        models.SelfGradingNotStarted,
		SelfAppliedRubricItemIDs: []string{},
		DiscrepancyReportIDs:     []string{},
	}

	ref := fr.firestoreClient.Collection(models.FirestoreSubmissionsCollection).Doc(submission.ID)
	err := fr.firestoreClient.RunTransaction(fr.ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if doc != nil && doc.Exists() {
			var existing models.Submission
			if err := mapstructure.Decode(doc.Data(), &existing); err != nil {
				return err
			}
			mergeResubmission(submission, &existing)
			return tx.Update(ref, resubmitUpdates(submission))
		}

		return tx.Set(ref, map[string]interface{}{
			"id":                       submission.ID,
			"assignmentID":             submission.AssignmentID,
			"problemID":                submission.ProblemID,
			"studentID":                submission.StudentID,
			"answer":                   submission.Answer,
			"submittedAt":              submission.SubmittedAt,
			"graded":                   false,
			"gradedBy":                 "",
			"gradedAt":                 time.Time{},
			"appliedRubricItemIDs":     []string{},
			"feedback":                 "",
			"selfGraded":               false,
			"selfGradingStatus":        submission.SelfGradingStatus,
			"selfAppliedRubricItemIDs": []string{},
			"discrepancyReportIDs":     []string{},
		})
	})
	if err != nil {
		if status.Code(err) == codes.Aborted {
			return nil, qerrors.SubmissionConflictError
		}
		return nil, fmt.Errorf("error creating submission: %v", err)
	}

	return submission, nil
}

// resubmitUpdates lists the writes a resubmission applies to the stored
// document. A new answer invalidates instructor grading; self-grading state
// and discrepancy report references are left alone.
func resubmitUpdates(s *models.Submission) []firestore.Update {
	return []firestore.Update{
		{Path: "answer", Value: s.Answer},
		{Path: "submittedAt", Value: s.SubmittedAt},
		{Path: "graded", Value: false},
		{Path: "gradedBy", Value: ""},
		{Path: "gradedAt", Value: time.Time{}},
		{Path: "appliedRubricItemIDs", Value: []string{}},
		{Path: "feedback", Value: ""},
	}
}

// mergeResubmission carries the fields a resubmission preserves from the
// stored document onto the fresh record, so the value returned to the caller
// matches what the document holds after the update.
func mergeResubmission(fresh, existing *models.Submission) *models.Submission {
	fresh.SelfGraded = existing.SelfGraded
	if existing.SelfGradingStatus != "" {
		fresh.SelfGradingStatus = existing.SelfGradingStatus
	}
	if existing.SelfAppliedRubricItemIDs != nil {
		fresh.SelfAppliedRubricItemIDs = existing.SelfAppliedRubricItemIDs
	}
	fresh.SelfGradedAt = existing.SelfGradedAt
	if existing.DiscrepancyReportIDs != nil {
		fresh.DiscrepancyReportIDs = existing.DiscrepancyReportIDs
	}
	return fresh
}

// GetSubmissionByID fetches a single submission document.
func (fr *FirebaseRepository) GetSubmissionByID(ID string) (*models.Submission, error) {
	doc, err := fr.firestoreClient.Collection(models.FirestoreSubmissionsCollection).Doc(ID).Get(fr.ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, qerrors.SubmissionNotFoundError
		}
		return nil, err
	}

	var submission models.Submission
	if err := mapstructure.Decode(doc.Data(), &submission); err != nil {
		return nil, err
	}
	submission.ID = doc.Ref.ID
	return &submission, nil
}

// SubmissionsForProblem returns every submission for the given
// (assignment, problem) pair.
func (fr *FirebaseRepository) SubmissionsForProblem(assignmentID, problemID string) ([]*models.Submission, error) {
	iter := fr.firestoreClient.Collection(models.FirestoreSubmissionsCollection).
		Where("assignmentID", "==", assignmentID).
		Where("problemID", "==", problemID).
		Documents(fr.ctx)

	var submissions []*models.Submission
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing submissions: %v", err)
		}

		var submission models.Submission
		if err := mapstructure.Decode(doc.Data(), &submission); err != nil {
			return nil, err
		}
		submission.ID = doc.Ref.ID
		submissions = append(submissions, &submission)
	}

	return submissions, nil
}

// GradeSubmission applies an instructor's rubric item set and feedback to a
// submission. Every applied rubric item must exist in the problem's rubric.
func (fr *FirebaseRepository) GradeSubmission(c *models.GradeSubmissionRequest) error {
	submission, err := fr.GetSubmissionByID(c.SubmissionID)
	if err != nil {
		return err
	}

	problem, err := fr.problemForSubmission(submission)
	if err != nil {
		return err
	}

	for _, id := range c.AppliedRubricItemIDs {
		if problem.RubricItemByID(id) == nil {
			return qerrors.RubricItemNotFoundError
		}
	}

	return fr.ApplyGrading(c.SubmissionID, c.AppliedRubricItemIDs, c.Feedback, c.GradedBy.ID)
}

// ApplyGrading persists a grading result, moving the submission from ungraded
// to graded.
func (fr *FirebaseRepository) ApplyGrading(submissionID string, appliedRubricItemIDs []string, feedback, gradedBy string) error {
	if appliedRubricItemIDs == nil {
		appliedRubricItemIDs = []string{}
	}

	_, err := fr.firestoreClient.Collection(models.FirestoreSubmissionsCollection).Doc(submissionID).Update(fr.ctx, []firestore.Update{
		{Path: "graded", Value: true},
		{Path: "gradedBy", Value: gradedBy},
		{Path: "gradedAt", Value: time.Now()},
		{Path: "appliedRubricItemIDs", Value: appliedRubricItemIDs},
		{Path: "feedback", Value: feedback},
	})
	return err
}

// SelfGradeSubmission records a student's own rubric assessment. Only
// permitted when the assignment enables self grading and grades are released;
// independent of instructor grading.
func (fr *FirebaseRepository) SelfGradeSubmission(c *models.SelfGradeSubmissionRequest) error {
	submission, err := fr.GetSubmissionByID(c.SubmissionID)
	if err != nil {
		return err
	}

	assignment, err := fr.GetAssignmentByID(submission.AssignmentID)
	if err != nil {
		return err
	}
	if err := grading.CheckSelfGradePolicy(assignment); err != nil {
		return err
	}

	problem := assignment.ProblemByID(submission.ProblemID)
	if problem == nil {
		return qerrors.ProblemNotFoundError
	}
	for _, id := range c.AppliedRubricItemIDs {
		if problem.RubricItemByID(id) == nil {
			return qerrors.RubricItemNotFoundError
		}
	}

	applied := c.AppliedRubricItemIDs
	if applied == nil {
		applied = []string{}
	}

	_, err = fr.firestoreClient.Collection(models.FirestoreSubmissionsCollection).Doc(c.SubmissionID).Update(fr.ctx, []firestore.Update{
		{Path: "selfGraded", Value: true},
		{Path: "selfGradingStatus", Value: models.SelfGradingCompleted},
		{Path: "selfAppliedRubricItemIDs", Value: applied},
		{Path: "selfGradedAt", Value: time.Now()},
	})
	return err
}

// problemForSubmission resolves the problem a submission answers.
func (fr *FirebaseRepository) problemForSubmission(submission *models.Submission) (*models.Problem, error) {
	assignment, err := fr.GetAssignmentByID(submission.AssignmentID)
	if err != nil {
		return nil, err
	}

	problem := assignment.ProblemByID(submission.ProblemID)
	if problem == nil {
		return nil, qerrors.ProblemNotFoundError
	}
	return problem, nil
}
