package grading

import (
	"testing"

	"gradebetter/internal/models"
)

func createProblem() *models.Problem {
	return &models.Problem{
		ID:        "p1",
		Question:  "What is 2+2?",
		MaxPoints: 2,
		RubricItems: []*models.RubricItem{
			{ID: "a", Description: "Correct answer", Points: 2},
			{ID: "b", Description: "Missing justification", Points: -1},
		},
	}
}

func TestScore(t *testing.T) {
	problem := createProblem()

	cases := []struct {
		applied  []string
		expected int
	}{
		{[]string{"a", "b"}, 1},
		{[]string{"a"}, 2},
		{[]string{}, 0},
		{nil, 0},
		{[]string{"b"}, -1},
		// Unknown identifiers contribute nothing.
		{[]string{"a", "nonexistent"}, 2},
	}

	for _, c := range cases {
		if got := Score(problem, c.applied); got != c.expected {
			t.Errorf("Score(%v): expected %d, got %d", c.applied, c.expected, got)
		}
	}
}

func TestScoreClamped(t *testing.T) {
	problem := createProblem()
	problem.RubricItems = append(problem.RubricItems, &models.RubricItem{
		ID: "c", Description: "Bonus", Points: 3,
	})

	// Negative raw score clamps to zero.
	if got := ScoreClamped(problem, []string{"b"}); got != 0 {
		t.Errorf("expected clamped score 0, got %d", got)
	}

	// Raw score above max clamps to max.
	if got := ScoreClamped(problem, []string{"a", "c"}); got != 2 {
		t.Errorf("expected clamped score 2, got %d", got)
	}

	// In-range scores are untouched.
	if got := ScoreClamped(problem, []string{"a", "b"}); got != 1 {
		t.Errorf("expected clamped score 1, got %d", got)
	}
}
