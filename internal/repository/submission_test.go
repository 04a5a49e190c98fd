package repository

import (
	"testing"
	"time"

	"gradebetter/internal/models"
)

func updatePaths(t *testing.T, submission *models.Submission) map[string]interface{} {
	t.Helper()
	paths := make(map[string]interface{})
	for _, u := range resubmitUpdates(submission) {
		paths[u.Path] = u.Value
	}
	return paths
}

func TestResubmitUpdatesResetGrading(t *testing.T) {
	submittedAt := time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)
	paths := updatePaths(t, &models.Submission{
		Answer:      "revised answer",
		SubmittedAt: submittedAt,
	})

	if paths["answer"] != "revised answer" {
		t.Errorf("expected new answer to be written, got %v", paths["answer"])
	}
	if paths["submittedAt"] != submittedAt {
		t.Errorf("expected new submission time to be written, got %v", paths["submittedAt"])
	}
	if paths["graded"] != false {
		t.Errorf("expected graded to reset to false, got %v", paths["graded"])
	}
	if paths["gradedBy"] != "" {
		t.Errorf("expected gradedBy to reset, got %v", paths["gradedBy"])
	}
	if paths["feedback"] != "" {
		t.Errorf("expected feedback to reset, got %v", paths["feedback"])
	}
	if applied, ok := paths["appliedRubricItemIDs"].([]string); !ok || len(applied) != 0 {
		t.Errorf("expected applied rubric items to reset, got %v", paths["appliedRubricItemIDs"])
	}
}

func TestResubmitUpdatesLeavePreservedFieldsAlone(t *testing.T) {
	paths := updatePaths(t, &models.Submission{Answer: "revised answer"})

	for _, path := range []string{
		"selfGraded", "selfGradingStatus", "selfAppliedRubricItemIDs",
		"selfGradedAt", "discrepancyReportIDs",
	} {
		if _, ok := paths[path]; ok {
			t.Errorf("resubmission must not write %v", path)
		}
	}
}

func TestMergeResubmission(t *testing.T) {
	selfGradedAt := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	existing := &models.Submission{
		Answer:                   "old answer",
		Graded:                   true,
		GradedBy:                 "instructor1",
		AppliedRubricItemIDs:     []string{"a"},
		Feedback:                 "nice",
		SelfGraded:               true,
		SelfGradingStatus:        models.SelfGradingCompleted,
		SelfAppliedRubricItemIDs: []string{"a", "b"},
		SelfGradedAt:             selfGradedAt,
		DiscrepancyReportIDs:     []string{"sub1_a"},
	}
	fresh := &models.Submission{
		Answer:                   "revised answer",
		AppliedRubricItemIDs:     []string{},
		SelfGradingStatus:        models.SelfGradingNotStarted,
		SelfAppliedRubricItemIDs: []string{},
		DiscrepancyReportIDs:     []string{},
	}

	merged := mergeResubmission(fresh, existing)

	// Preserved state comes from the stored document.
	if !merged.SelfGraded || merged.SelfGradingStatus != models.SelfGradingCompleted {
		t.Errorf("expected self grading to survive resubmission, got %+v", merged)
	}
	if len(merged.SelfAppliedRubricItemIDs) != 2 {
		t.Errorf("expected self-applied items to survive, got %v", merged.SelfAppliedRubricItemIDs)
	}
	if merged.SelfGradedAt != selfGradedAt {
		t.Errorf("expected selfGradedAt to survive, got %v", merged.SelfGradedAt)
	}
	if len(merged.DiscrepancyReportIDs) != 1 || merged.DiscrepancyReportIDs[0] != "sub1_a" {
		t.Errorf("expected discrepancy report references to survive, got %v", merged.DiscrepancyReportIDs)
	}

	// Instructor grading does not carry over.
	if merged.Answer != "revised answer" {
		t.Errorf("expected the new answer, got %v", merged.Answer)
	}
	if merged.Graded || merged.GradedBy != "" || merged.Feedback != "" {
		t.Errorf("expected grading state to stay reset, got %+v", merged)
	}
	if len(merged.AppliedRubricItemIDs) != 0 {
		t.Errorf("expected no applied rubric items, got %v", merged.AppliedRubricItemIDs)
	}
}

func TestSubmissionDocID(t *testing.T) {
	if got := submissionDocID("asgn1", "p1", "student1"); got != "asgn1_p1_student1" {
		t.Errorf("unexpected doc ID %v", got)
	}
}
