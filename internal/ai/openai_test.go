package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradebetter/internal/grading"
	"gradebetter/internal/models"
)

var testRubric = []*models.RubricItem{
	{ID: "a", Description: "Correct answer", Points: 2},
	{ID: "b", Description: "Missing justification", Points: -1},
}

func TestParseGradingResponse(t *testing.T) {
	result, err := parseGradingResponse(`{"appliedRubricItemIds": ["a", "b"], "feedback": "Good work"}`, testRubric)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.AppliedRubricItemIDs)
	assert.Equal(t, "Good work", result.Feedback)
}

func TestParseGradingResponseNoItems(t *testing.T) {
	// A missing list means no rubric items apply, not a malformed payload.
	result, err := parseGradingResponse(`{"feedback": "No credit"}`, testRubric)
	require.NoError(t, err)
	assert.Equal(t, []string{}, result.AppliedRubricItemIDs)
}

func TestParseGradingResponseUnknownItem(t *testing.T) {
	_, err := parseGradingResponse(`{"appliedRubricItemIds": ["a", "z"], "feedback": ""}`, testRubric)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rubric item")
}

func TestParseGradingResponseMalformed(t *testing.T) {
	_, err := parseGradingResponse(`sure! here's the grading:`, testRubric)
	assert.Error(t, err)
}

func TestParseRubricResponse(t *testing.T) {
	items, err := parseRubricResponse(`{"rubricItems": [
		{"description": "Correct base case", "points": 2},
		{"description": "Off-by-one in loop bound", "points": -1}
	]}`)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Correct base case", items[0].Description)
	assert.Equal(t, 2, items[0].Points)
	assert.Equal(t, -1, items[1].Points)
}

func TestParseRubricResponseRejectsEmpty(t *testing.T) {
	_, err := parseRubricResponse(`{"rubricItems": []}`)
	assert.Error(t, err)

	_, err = parseRubricResponse(`{"rubricItems": [{"description": "", "points": 1}]}`)
	assert.Error(t, err)
}

func TestBuildGradingPrompt(t *testing.T) {
	prompt := buildGradingPrompt(&grading.GradeRequest{
		Question:          "What is 2+2?",
		ReferenceSolution: "4",
		RubricItems:       testRubric,
		StudentAnswer:     "four",
	})

	assert.Contains(t, prompt, "What is 2+2?")
	assert.Contains(t, prompt, "# Reference Solution")
	assert.Contains(t, prompt, "id: a, points: 2")
	assert.Contains(t, prompt, "four")
}

func TestBuildGradingPromptOmitsEmptySolution(t *testing.T) {
	prompt := buildGradingPrompt(&grading.GradeRequest{
		Question:    "What is 2+2?",
		RubricItems: testRubric,
	})
	assert.False(t, strings.Contains(prompt, "# Reference Solution"))
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	client, err := NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", client.cfg.Model)
	assert.Equal(t, 1024, client.cfg.MaxTokens)
}
