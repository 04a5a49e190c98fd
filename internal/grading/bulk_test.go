package grading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradebetter/internal/models"
)

type stubStore struct {
	mu          sync.Mutex
	submissions []*models.Submission
	graded      map[string][]string
	statuses    []models.GradingStatus
}

func newStubStore(submissions []*models.Submission) *stubStore {
	return &stubStore{submissions: submissions, graded: make(map[string][]string)}
}

func (s *stubStore) SubmissionsForProblem(assignmentID, problemID string) ([]*models.Submission, error) {
	return s.submissions, nil
}

func (s *stubStore) ApplyGrading(submissionID string, appliedRubricItemIDs []string, feedback, gradedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graded[submissionID] = appliedRubricItemIDs
	return nil
}

func (s *stubStore) SetAssignmentGradingStatus(assignmentID string, status models.GradingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	return nil
}

type stubGrader struct {
	inFlight    int64
	maxInFlight int64
	calls       int64
	delay       time.Duration
	failFor     map[string]bool
}

func (g *stubGrader) GradeSubmission(ctx context.Context, req *GradeRequest) (*GradeResult, error) {
	current := atomic.AddInt64(&g.inFlight, 1)
	defer atomic.AddInt64(&g.inFlight, -1)
	for {
		max := atomic.LoadInt64(&g.maxInFlight)
		if current <= max || atomic.CompareAndSwapInt64(&g.maxInFlight, max, current) {
			break
		}
	}

	atomic.AddInt64(&g.calls, 1)
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.failFor[req.StudentAnswer] {
		return nil, errors.New("grading service unavailable")
	}
	return &GradeResult{AppliedRubricItemIDs: []string{"a"}, Feedback: "ok"}, nil
}

func makeSubmissions(n int) []*models.Submission {
	submissions := make([]*models.Submission, n)
	for i := range submissions {
		submissions[i] = &models.Submission{
			ID:     fmt.Sprintf("sub-%d", i),
			Answer: fmt.Sprintf("answer-%d", i),
		}
	}
	return submissions
}

func runGradeAll(t *testing.T, store *stubStore, grader *stubGrader, limit int) []Progress {
	t.Helper()

	_, assignment := createAssignment()
	problem := assignment.Problems[0]

	var (
		mu        sync.Mutex
		snapshots []Progress
	)
	orchestrator := NewOrchestrator(store, grader)
	err := orchestrator.GradeAll(context.Background(), assignment, problem, limit, func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, p)
	})
	require.NoError(t, err)
	return snapshots
}

func TestGradeAllCompletesEverySubmission(t *testing.T) {
	const n = 20
	store := newStubStore(makeSubmissions(n))
	grader := &stubGrader{}

	snapshots := runGradeAll(t, store, grader, 4)

	require.NotEmpty(t, snapshots)
	final := snapshots[len(snapshots)-1]
	assert.True(t, final.Complete)
	assert.Equal(t, n, final.TotalSubmissions)
	assert.Equal(t, n, final.CompletedSubmissions+final.FailedSubmissions)
	assert.Equal(t, n, final.CompletedSubmissions)
	assert.Len(t, store.graded, n)
	assert.Equal(t, []models.GradingStatus{models.GradingInProgress, models.GradingCompleted}, store.statuses)
}

func TestGradeAllHonorsConcurrencyLimit(t *testing.T) {
	const n, limit = 30, 3
	store := newStubStore(makeSubmissions(n))
	grader := &stubGrader{delay: 5 * time.Millisecond}

	runGradeAll(t, store, grader, limit)

	assert.LessOrEqual(t, grader.maxInFlight, int64(limit))
	assert.Equal(t, int64(n), grader.calls)
}

func TestGradeAllFailuresDoNotHaltBatch(t *testing.T) {
	const n = 10
	store := newStubStore(makeSubmissions(n))
	grader := &stubGrader{failFor: map[string]bool{"answer-2": true, "answer-7": true}}

	snapshots := runGradeAll(t, store, grader, 2)

	final := snapshots[len(snapshots)-1]
	assert.Equal(t, n, final.TotalSubmissions)
	assert.Equal(t, n-2, final.CompletedSubmissions)
	assert.Equal(t, 2, final.FailedSubmissions)
	assert.True(t, final.Complete)

	// Successes are persisted even when neighbors fail.
	assert.Len(t, store.graded, n-2)
	assert.NotContains(t, store.graded, "sub-2")
	assert.NotContains(t, store.graded, "sub-7")
}

func TestGradeAllSkipsAlreadyGraded(t *testing.T) {
	submissions := makeSubmissions(6)
	submissions[0].Graded = true
	submissions[3].Graded = true
	store := newStubStore(submissions)
	grader := &stubGrader{}

	snapshots := runGradeAll(t, store, grader, 2)

	final := snapshots[len(snapshots)-1]
	assert.Equal(t, 4, final.TotalSubmissions)
	assert.Equal(t, int64(4), grader.calls)
	assert.NotContains(t, store.graded, "sub-0")
	assert.NotContains(t, store.graded, "sub-3")
}

func TestGradeAllSnapshotsAreMonotonic(t *testing.T) {
	const n = 15
	store := newStubStore(makeSubmissions(n))
	grader := &stubGrader{delay: time.Millisecond, failFor: map[string]bool{"answer-4": true}}

	snapshots := runGradeAll(t, store, grader, 4)

	prev := Progress{TotalSubmissions: n}
	for _, p := range snapshots {
		assert.Equal(t, n, p.TotalSubmissions)
		assert.GreaterOrEqual(t, p.CompletedSubmissions, prev.CompletedSubmissions)
		assert.GreaterOrEqual(t, p.FailedSubmissions, prev.FailedSubmissions)
		prev = p
	}
	assert.True(t, snapshots[len(snapshots)-1].Complete)
}

func TestGradeAllCancellation(t *testing.T) {
	const n = 10
	store := newStubStore(makeSubmissions(n))
	grader := &stubGrader{}

	_, assignment := createAssignment()
	problem := assignment.Problems[0]

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var final Progress
	orchestrator := NewOrchestrator(store, grader)
	err := orchestrator.GradeAll(ctx, assignment, problem, 2, func(p Progress) {
		final = p
	})
	require.NoError(t, err)

	// Nothing was dispatched; every submission counts as failed.
	assert.Equal(t, int64(0), grader.calls)
	assert.Equal(t, n, final.TotalSubmissions)
	assert.Equal(t, n, final.FailedSubmissions)
	assert.Equal(t, 0, final.CompletedSubmissions)
	assert.True(t, final.Complete)
}
