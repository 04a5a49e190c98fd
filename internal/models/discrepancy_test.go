package models

import "testing"

func TestAccumulatedReportStatus(t *testing.T) {
	cases := []struct {
		name     string
		reports  []*DiscrepancyReport
		expected ReportStatus
	}{
		{"no reports", nil, ReportResolved},
		{"all resolved", []*DiscrepancyReport{
			{Status: ReportResolved},
			{Status: ReportResolved},
		}, ReportResolved},
		{"one pending", []*DiscrepancyReport{
			{Status: ReportResolved},
			{Status: ReportPending},
			{Status: ReportResolved},
		}, ReportPending},
	}

	for _, c := range cases {
		if got := AccumulatedReportStatus(c.reports); got != c.expected {
			t.Errorf("%s: expected %v, got %v", c.name, c.expected, got)
		}
	}
}
