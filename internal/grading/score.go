package grading

import "gradebetter/internal/models"

// Score sums the point values of the problem's rubric items whose IDs appear
// in applied. Rubric points are signed, so the raw sum can fall outside
// [0, maxPoints]; the raw sum is the canonical score. Identifiers that don't
// match any rubric item contribute nothing.
func Score(problem *models.Problem, applied []string) int {
	total := 0
	for _, id := range applied {
		if item := problem.RubricItemByID(id); item != nil {
			total += item.Points
		}
	}
	return total
}

// ScoreClamped is Score restricted to [0, problem.MaxPoints].
func ScoreClamped(problem *models.Problem, applied []string) int {
	score := Score(problem, applied)
	if score < 0 {
		return 0
	}
	if score > problem.MaxPoints {
		return problem.MaxPoints
	}
	return score
}
