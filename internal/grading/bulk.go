package grading

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"gradebetter/internal/models"
)

// Progress is a monotonically-updated snapshot of a bulk grading run.
// Completed only counts successful grading calls; a failed submission is
// counted under Failed and never halts the batch.
type Progress struct {
	TotalSubmissions     int  `json:"totalSubmissions"`
	CompletedSubmissions int  `json:"completedSubmissions"`
	FailedSubmissions    int  `json:"failedSubmissions"`
	Complete             bool `json:"complete,omitempty"`
}

// ProgressFunc receives progress snapshots. Invocations are serialized and
// ordered by completion, so an observer never sees an out-of-order snapshot.
type ProgressFunc func(Progress)

// GradeRequest carries everything the external grading service needs to grade
// one submission.
type GradeRequest struct {
	Question          string
	ReferenceSolution string
	RubricItems       []*models.RubricItem
	StudentAnswer     string
}

// GradeResult is the grading service's verdict for one submission.
type GradeResult struct {
	AppliedRubricItemIDs []string
	Feedback             string
}

// Grader grades a single submission against a rubric.
type Grader interface {
	GradeSubmission(ctx context.Context, req *GradeRequest) (*GradeResult, error)
}

// SubmissionStore is the slice of the repository the orchestrator needs:
// fetching the submissions for a problem and persisting grading results.
type SubmissionStore interface {
	SubmissionsForProblem(assignmentID, problemID string) ([]*models.Submission, error)
	ApplyGrading(submissionID string, appliedRubricItemIDs []string, feedback, gradedBy string) error
	SetAssignmentGradingStatus(assignmentID string, status models.GradingStatus) error
}

// Orchestrator grades every ungraded submission for one problem using an
// external grading call, with bounded concurrency, reporting live progress to
// exactly one observer.
type Orchestrator struct {
	store  SubmissionStore
	grader Grader
}

func NewOrchestrator(store SubmissionStore, grader Grader) *Orchestrator {
	return &Orchestrator{store: store, grader: grader}
}

// GradeAll grades all ungraded submissions for the (assignment, problem)
// pair, keeping at most limit grading calls outstanding. onProgress is
// invoked after every individual completion and one final time with
// Complete=true. Successes are persisted as they happen and are never rolled
// back. Cancelling ctx stops new work from being dispatched; submissions
// never dispatched are counted as failed in the final snapshot.
func (o *Orchestrator) GradeAll(ctx context.Context, assignment *models.Assignment, problem *models.Problem, limit int, onProgress ProgressFunc) error {
	if limit < 1 {
		limit = 1
	}

	submissions, err := o.store.SubmissionsForProblem(assignment.ID, problem.ID)
	if err != nil {
		return err
	}

	var ungraded []*models.Submission
	for _, s := range submissions {
		if !s.Graded {
			ungraded = append(ungraded, s)
		}
	}

	if err := o.store.SetAssignmentGradingStatus(assignment.ID, models.GradingInProgress); err != nil {
		glog.Warningf("error marking assignment %v as in-progress: %v", assignment.ID, err)
	}

	var (
		mu       sync.Mutex
		progress = Progress{TotalSubmissions: len(ungraded)}
		sem      = make(chan struct{}, limit)
		wg       sync.WaitGroup
	)

	report := func(update func(*Progress)) {
		mu.Lock()
		defer mu.Unlock()
		update(&progress)
		if onProgress != nil {
			onProgress(progress)
		}
	}

	for _, submission := range ungraded {
		if ctx.Err() != nil {
			report(func(p *Progress) { p.FailedSubmissions++ })
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(s *models.Submission) {
			defer wg.Done()
			defer func() { <-sem }()

			err := o.gradeOne(ctx, problem, s)
			if err != nil {
				glog.Warningf("error grading submission %v: %v", s.ID, err)
				report(func(p *Progress) { p.FailedSubmissions++ })
				return
			}
			report(func(p *Progress) { p.CompletedSubmissions++ })
		}(submission)
	}
	wg.Wait()

	if err := o.store.SetAssignmentGradingStatus(assignment.ID, models.GradingCompleted); err != nil {
		glog.Warningf("error marking assignment %v as completed: %v", assignment.ID, err)
	}

	report(func(p *Progress) { p.Complete = true })
	return nil
}

// gradeOne calls the external grading service for a single submission and
// persists the result. On failure the submission is left untouched; the
// caller re-invokes the whole bulk run if a retry is wanted.
func (o *Orchestrator) gradeOne(ctx context.Context, problem *models.Problem, submission *models.Submission) error {
	result, err := o.grader.GradeSubmission(ctx, &GradeRequest{
		Question:          problem.Question,
		ReferenceSolution: problem.ReferenceSolution,
		RubricItems:       problem.RubricItems,
		StudentAnswer:     submission.Answer,
	})
	if err != nil {
		return err
	}

	return o.store.ApplyGrading(submission.ID, result.AppliedRubricItemIDs, result.Feedback, "ai")
}
