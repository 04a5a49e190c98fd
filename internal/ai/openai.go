package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openai "github.com/sashabaranov/go-openai"

	"gradebetter/internal/grading"
	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradebetter",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI grading and rubric generation requests",
	}, []string{"operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradebetter",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI grading and rubric generation requests",
	}, []string{"operation"})
)

// GeneratedRubricItem is one criterion proposed by the rubric generator.
type GeneratedRubricItem struct {
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// Config defines configuration options for the OpenAI client.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// Client calls the OpenAI chat completion API to grade submissions against a
// rubric and to generate rubrics for problems. It implements grading.Grader.
type Client struct {
	client *openai.Client
	cfg    Config
}

// NewClient builds a new AI client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	return &Client{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
	}, nil
}

// GradeSubmission asks the completion service which rubric items apply to the
// student's answer. Timeouts, rate limits, and malformed responses all
// surface as qerrors.GradingFailedError.
func (c *Client) GradeSubmission(ctx context.Context, req *grading.GradeRequest) (*grading.GradeResult, error) {
	content, err := c.complete(ctx, "grade", graderSystemPrompt, buildGradingPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qerrors.GradingFailedError, err)
	}

	result, err := parseGradingResponse(content, req.RubricItems)
	if err != nil {
		aiFailures.WithLabelValues("grade").Inc()
		return nil, fmt.Errorf("%w: %v", qerrors.GradingFailedError, err)
	}

	return result, nil
}

// GenerateRubric asks the completion service to draft rubric items for a
// problem. Failures surface as qerrors.RubricGenerationFailedError.
func (c *Client) GenerateRubric(ctx context.Context, question, referenceSolution, extraContext string) ([]*GeneratedRubricItem, error) {
	content, err := c.complete(ctx, "generate_rubric", rubricSystemPrompt, buildRubricPrompt(question, referenceSolution, extraContext))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qerrors.RubricGenerationFailedError, err)
	}

	items, err := parseRubricResponse(content)
	if err != nil {
		aiFailures.WithLabelValues("generate_rubric").Inc()
		return nil, fmt.Errorf("%w: %v", qerrors.RubricGenerationFailedError, err)
	}

	return items, nil
}

func (c *Client) complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	aiDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(operation).Inc()
		return "", err
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(operation).Inc()
		return "", fmt.Errorf("no choices returned from completion service")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

const graderSystemPrompt = "You are a teaching assistant grading a student's answer against a rubric. " +
	"Respond with a JSON object containing appliedRubricItemIds (the IDs of every rubric item that applies " +
	"to the answer) and feedback (a short explanation for the student)."

const rubricSystemPrompt = "You are a teaching assistant drafting a grading rubric for a problem. " +
	"Respond with a JSON object containing rubricItems, a list of objects with description and points. " +
	"Points are signed integers; deductions carry negative points."

func buildGradingPrompt(req *grading.GradeRequest) string {
	builder := strings.Builder{}
	builder.WriteString("# Question\n")
	builder.WriteString(req.Question)
	if req.ReferenceSolution != "" {
		builder.WriteString("\n\n# Reference Solution\n")
		builder.WriteString(req.ReferenceSolution)
	}
	builder.WriteString("\n\n# Rubric\n")
	for _, item := range req.RubricItems {
		builder.WriteString(fmt.Sprintf("- id: %s, points: %d, description: %s\n", item.ID, item.Points, item.Description))
	}
	builder.WriteString("\n# Student Answer\n")
	builder.WriteString(req.StudentAnswer)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func buildRubricPrompt(question, referenceSolution, extraContext string) string {
	builder := strings.Builder{}
	builder.WriteString("# Question\n")
	builder.WriteString(question)
	if referenceSolution != "" {
		builder.WriteString("\n\n# Reference Solution\n")
		builder.WriteString(referenceSolution)
	}
	if extraContext != "" {
		builder.WriteString("\n\n# Notes\n")
		builder.WriteString(extraContext)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

// parseGradingResponse decodes the grader's JSON payload. A payload that
// references a rubric item ID not present in the rubric is malformed.
func parseGradingResponse(content string, rubricItems []*models.RubricItem) (*grading.GradeResult, error) {
	type payload struct {
		AppliedRubricItemIDs []string `json:"appliedRubricItemIds"`
		Feedback             string   `json:"feedback"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("parse grading json: %w", err)
	}

	known := make(map[string]bool, len(rubricItems))
	for _, item := range rubricItems {
		known[item.ID] = true
	}
	for _, id := range data.AppliedRubricItemIDs {
		if !known[id] {
			return nil, fmt.Errorf("response references unknown rubric item %q", id)
		}
	}

	applied := data.AppliedRubricItemIDs
	if applied == nil {
		applied = []string{}
	}

	return &grading.GradeResult{
		AppliedRubricItemIDs: applied,
		Feedback:             data.Feedback,
	}, nil
}

func parseRubricResponse(content string) ([]*GeneratedRubricItem, error) {
	type payload struct {
		RubricItems []*GeneratedRubricItem `json:"rubricItems"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("parse rubric json: %w", err)
	}

	if len(data.RubricItems) == 0 {
		return nil, fmt.Errorf("response contains no rubric items")
	}
	for _, item := range data.RubricItems {
		if item.Description == "" {
			return nil, fmt.Errorf("response contains a rubric item with no description")
		}
	}

	return data.RubricItems, nil
}
