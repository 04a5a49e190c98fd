package repository

import (
	"errors"
	"testing"

	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"
)

func TestRefileUpdatesOverwritesPendingReport(t *testing.T) {
	existing := &models.DiscrepancyReport{
		Status:               models.ReportPending,
		StudentClaimsApplied: false,
		Explanation:          "first attempt",
	}
	filed := &models.DiscrepancyReport{
		WasOriginallyApplied: true,
		StudentClaimsApplied: true,
		Explanation:          "clearer explanation",
	}

	updates, err := refileUpdates(existing, filed)
	if err != nil {
		t.Fatalf("expected re-filing a pending report to succeed, got %v", err)
	}

	paths := make(map[string]interface{})
	for _, u := range updates {
		paths[u.Path] = u.Value
	}
	if paths["wasOriginallyApplied"] != true || paths["studentClaimsApplied"] != true {
		t.Errorf("expected claim fields to be overwritten, got %v", paths)
	}
	if paths["explanation"] != "clearer explanation" {
		t.Errorf("expected explanation to be overwritten, got %v", paths["explanation"])
	}

	// Re-filing updates in place; status and identity are untouched.
	for _, path := range []string{"status", "id", "submissionID", "rubricItemID", "resolution"} {
		if _, ok := paths[path]; ok {
			t.Errorf("re-filing must not write %v", path)
		}
	}
}

func TestRefileUpdatesRejectsResolvedReport(t *testing.T) {
	existing := &models.DiscrepancyReport{
		Status: models.ReportResolved,
		Resolution: &models.Resolution{
			ShouldApply: false,
			ResolvedBy:  "instructor1",
		},
	}

	_, err := refileUpdates(existing, &models.DiscrepancyReport{Explanation: "trying again"})
	if !errors.Is(err, qerrors.ReportAlreadyResolvedError) {
		t.Errorf("expected ReportAlreadyResolvedError, got %v", err)
	}
}

func TestReportDocID(t *testing.T) {
	if got := reportDocID("sub1", "item1"); got != "sub1_item1" {
		t.Errorf("unexpected doc ID %v", got)
	}
}
