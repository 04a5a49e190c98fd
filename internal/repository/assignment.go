package repository

import (
	"context"
	"fmt"
	"log"

	"gradebetter/internal/grading"
	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

func (fr *FirebaseRepository) initializeAssignmentsListener() {
	handleDocs := func(docs []*firestore.DocumentSnapshot) error {
		newAssignments := make(map[string]*models.Assignment)
		for _, doc := range docs {
			if !doc.Exists() {
				continue
			}

			var a models.Assignment
			err := mapstructure.Decode(doc.Data(), &a)
			if err != nil {
				log.Panicf("Error destructuring document: %v", err)
				return err
			}

			a.ID = doc.Ref.ID
			newAssignments[doc.Ref.ID] = &a
		}

		fr.assignmentsLock.Lock()
		defer fr.assignmentsLock.Unlock()
		fr.assignments = newAssignments

		return nil
	}

	done := make(chan bool)
	go func() {
		err := fr.createCollectionInitializer(models.FirestoreAssignmentsCollection, done, handleDocs)
		if err != nil {
			log.Panicf("%v collection listener error: %v\n", models.FirestoreAssignmentsCollection, err)
		}
	}()
	<-done
}

// GetAssignmentByID gets the Assignment from the assignments map corresponding to the provided assignment ID.
func (fr *FirebaseRepository) GetAssignmentByID(ID string) (*models.Assignment, error) {
	fr.assignmentsLock.RLock()
	defer fr.assignmentsLock.RUnlock()

	if val, ok := fr.assignments[ID]; ok {
		return val, nil
	} else {
		return nil, qerrors.AssignmentNotFoundError
	}
}

func (fr *FirebaseRepository) CreateAssignment(c *models.CreateAssignmentRequest) (assignment *models.Assignment, err error) {
	course, err := fr.GetCourseByID(c.CourseID)
	if err != nil {
		return nil, err
	}

	if c.FinalSubmissionDeadline.Before(c.DueDate) {
		return nil, qerrors.InvalidDeadlinesError
	}

	assignment = &models.Assignment{
		CourseID:                course.ID,
		Title:                   c.Title,
		Description:             c.Description,
		DueDate:                 c.DueDate,
		FinalSubmissionDeadline: c.FinalSubmissionDeadline,
		Published:               false,
		Problems:                []*models.Problem{},
		GradingStatus:           models.GradingNotStarted,
	}

	ref, _, err := fr.firestoreClient.Collection(models.FirestoreAssignmentsCollection).Add(fr.ctx, map[string]interface{}{
		"courseID":                assignment.CourseID,
		"title":                   assignment.Title,
		"description":             assignment.Description,
		"dueDate":                 assignment.DueDate,
		"finalSubmissionDeadline": assignment.FinalSubmissionDeadline,
		"published":               assignment.Published,
		"gradesReleased":          assignment.GradesReleased,
		"selfGradingEnabled":      assignment.SelfGradingEnabled,
		"problems":                []map[string]interface{}{},
		"gradingStatus":           assignment.GradingStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating assignment: %v", err)
	}
	assignment.ID = ref.ID

	_, err = fr.firestoreClient.Collection(models.FirestoreCoursesCollection).Doc(course.ID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "assignmentIDs",
			Value: firestore.ArrayUnion(assignment.ID),
		},
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

func (fr *FirebaseRepository) EditAssignment(c *models.EditAssignmentRequest) error {
	if _, err := fr.GetAssignmentByID(c.AssignmentID); err != nil {
		return err
	}

	if c.FinalSubmissionDeadline.Before(c.DueDate) {
		return qerrors.InvalidDeadlinesError
	}

	_, err := fr.firestoreClient.Collection(models.FirestoreAssignmentsCollection).Doc(c.AssignmentID).Update(fr.ctx, []firestore.Update{
		{Path: "title", Value: c.Title},
		{Path: "description", Value: c.Description},
		{Path: "dueDate", Value: c.DueDate},
		{Path: "finalSubmissionDeadline", Value: c.FinalSubmissionDeadline},
	})
	return err
}

func (fr *FirebaseRepository) DeleteAssignment(c *models.DeleteAssignmentRequest) error {
	assignment, err := fr.GetAssignmentByID(c.AssignmentID)
	if err != nil {
		return err
	}

	// Remove the assignment from its course.
	_, err = fr.firestoreClient.Collection(models.FirestoreCoursesCollection).Doc(assignment.CourseID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "assignmentIDs",
			Value: firestore.ArrayRemove(c.AssignmentID),
		},
	})
	if err != nil {
		return err
	}

	_, err = fr.firestoreClient.Collection(models.FirestoreAssignmentsCollection).Doc(c.AssignmentID).Delete(fr.ctx)
	return err
}

func (fr *FirebaseRepository) PublishAssignment(c *models.PublishAssignmentRequest) error {
	if _, err := fr.GetAssignmentByID(c.AssignmentID); err != nil {
		return err
	}

	_, err := fr.firestoreClient.Collection(models.FirestoreAssignmentsCollection).Doc(c.AssignmentID).Update(fr.ctx, []firestore.Update{
		{Path: "published", Value: c.Published},
	})
	return err
}

func (fr *FirebaseRepository) ReleaseGrades(c *models.ReleaseGradesRequest) error {
	if _, err := fr.GetAssignmentByID(c.AssignmentID); err != nil {
		return err
	}

	_, err := fr.firestoreClient.Collection(models.FirestoreAssignmentsCollection).Doc(c.AssignmentID).Update(fr.ctx, []firestore.Update{
		{Path: "gradesReleased", Value: c.GradesReleased},
	})
	return err
}

func (fr *FirebaseRepository) SetSelfGrading(c *models.SetSelfGradingRequest) error {
	if _, err := fr.GetAssignmentByID(c.AssignmentID); err != nil {
		return err
	}

	_, err := fr.firestoreClient.Collection(models.FirestoreAssignmentsCollection).Doc(c.AssignmentID).Update(fr.ctx, []firestore.Update{
		{Path: "selfGradingEnabled", Value: c.SelfGradingEnabled},
	})
	return err
}

// SetAssignmentGradingStatus records where a bulk grading run stands.
func (fr *FirebaseRepository) SetAssignmentGradingStatus(assignmentID string, gradingStatus models.GradingStatus) error {
	_, err := fr.firestoreClient.Collection(models.FirestoreAssignmentsCollection).Doc(assignmentID).Update(fr.ctx, []firestore.Update{
		{Path: "gradingStatus", Value: gradingStatus},
	})
	return err
}

// Problems and rubric items. Both are embedded in the assignment document, so
// every mutation rewrites the assignment's problems field.

func (fr *FirebaseRepository) AddProblem(c *models.AddProblemRequest) (*models.Problem, error) {
	problem := &models.Problem{
		ID:                uuid.New().String(),
		Question:          c.Question,
		ReferenceSolution: c.ReferenceSolution,
		MaxPoints:         c.MaxPoints,
		RubricItems:       []*models.RubricItem{},
	}

	err := fr.updateProblems(c.AssignmentID, func(problems []*models.Problem) ([]*models.Problem, error) {
		return append(problems, problem), nil
	})
	if err != nil {
		return nil, err
	}
	return problem, nil
}

func (fr *FirebaseRepository) EditProblem(c *models.EditProblemRequest) error {
	return fr.updateProblems(c.AssignmentID, func(problems []*models.Problem) ([]*models.Problem, error) {
		problem := problemByID(problems, c.ProblemID)
		if problem == nil {
			return nil, qerrors.ProblemNotFoundError
		}
		problem.Question = c.Question
		problem.ReferenceSolution = c.ReferenceSolution
		problem.MaxPoints = c.MaxPoints
		return problems, nil
	})
}

func (fr *FirebaseRepository) DeleteProblem(c *models.DeleteProblemRequest) error {
	return fr.updateProblems(c.AssignmentID, func(problems []*models.Problem) ([]*models.Problem, error) {
		for i, problem := range problems {
			if problem.ID == c.ProblemID {
				return append(problems[:i], problems[i+1:]...), nil
			}
		}
		return nil, qerrors.ProblemNotFoundError
	})
}

func (fr *FirebaseRepository) AddRubricItem(c *models.AddRubricItemRequest) (*models.RubricItem, error) {
	item := &models.RubricItem{
		ID:          uuid.New().String(),
		Description: c.Description,
		Points:      c.Points,
	}

	err := fr.updateProblems(c.AssignmentID, func(problems []*models.Problem) ([]*models.Problem, error) {
		problem := problemByID(problems, c.ProblemID)
		if err := grading.CheckRubricEditable(problem); err != nil {
			return nil, err
		}
		problem.RubricItems = append(problem.RubricItems, item)
		return problems, nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (fr *FirebaseRepository) EditRubricItem(c *models.EditRubricItemRequest) error {
	return fr.updateProblems(c.AssignmentID, func(problems []*models.Problem) ([]*models.Problem, error) {
		problem := problemByID(problems, c.ProblemID)
		if err := grading.CheckRubricEditable(problem); err != nil {
			return nil, err
		}
		item := problem.RubricItemByID(c.RubricItemID)
		if item == nil {
			return nil, qerrors.RubricItemNotFoundError
		}
		item.Description = c.Description
		item.Points = c.Points
		return problems, nil
	})
}

func (fr *FirebaseRepository) DeleteRubricItem(c *models.DeleteRubricItemRequest) error {
	return fr.updateProblems(c.AssignmentID, func(problems []*models.Problem) ([]*models.Problem, error) {
		problem := problemByID(problems, c.ProblemID)
		if err := grading.CheckRubricEditable(problem); err != nil {
			return nil, err
		}
		for i, item := range problem.RubricItems {
			if item.ID == c.RubricItemID {
				problem.RubricItems = append(problem.RubricItems[:i], problem.RubricItems[i+1:]...)
				return problems, nil
			}
		}
		return nil, qerrors.RubricItemNotFoundError
	})
}

// AddGeneratedRubricItems appends a batch of AI-generated items to a problem's
// rubric, assigning each a stable identifier.
func (fr *FirebaseRepository) AddGeneratedRubricItems(assignmentID, problemID string, items []*models.RubricItem) error {
	return fr.updateProblems(assignmentID, func(problems []*models.Problem) ([]*models.Problem, error) {
		problem := problemByID(problems, problemID)
		if err := grading.CheckRubricEditable(problem); err != nil {
			return nil, err
		}
		for _, item := range items {
			item.ID = uuid.New().String()
			problem.RubricItems = append(problem.RubricItems, item)
		}
		return problems, nil
	})
}

// FinalizeRubric moves a problem's rubric into the finalized state. Further
// rubric edits are rejected until an explicit UnfinalizeRubric.
func (fr *FirebaseRepository) FinalizeRubric(c *models.FinalizeRubricRequest) error {
	return fr.setRubricFinalized(c, true)
}

// UnfinalizeRubric reopens a finalized rubric for edits.
func (fr *FirebaseRepository) UnfinalizeRubric(c *models.FinalizeRubricRequest) error {
	return fr.setRubricFinalized(c, false)
}

func (fr *FirebaseRepository) setRubricFinalized(c *models.FinalizeRubricRequest, finalized bool) error {
	return fr.updateProblems(c.AssignmentID, func(problems []*models.Problem) ([]*models.Problem, error) {
		problem := problemByID(problems, c.ProblemID)
		if problem == nil {
			return nil, qerrors.ProblemNotFoundError
		}
		problem.RubricFinalized = finalized
		return problems, nil
	})
}

// updateProblems runs mutate against a deep copy of the assignment's problem
// list inside a Firestore transaction, then writes the new list back. The
// transaction keeps concurrent rubric edits from clobbering each other.
func (fr *FirebaseRepository) updateProblems(assignmentID string, mutate func([]*models.Problem) ([]*models.Problem, error)) error {
	if _, err := fr.GetAssignmentByID(assignmentID); err != nil {
		return err
	}

	ref := fr.firestoreClient.Collection(models.FirestoreAssignmentsCollection).Doc(assignmentID)
	return fr.firestoreClient.RunTransaction(fr.ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var assignment models.Assignment
		if err := mapstructure.Decode(doc.Data(), &assignment); err != nil {
			return err
		}

		problems, err := mutate(copyProblems(assignment.Problems))
		if err != nil {
			return err
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "problems", Value: problemsToDocs(problems)},
		})
	})
}

func problemByID(problems []*models.Problem, id string) *models.Problem {
	for _, problem := range problems {
		if problem.ID == id {
			return problem
		}
	}
	return nil
}

func copyProblems(problems []*models.Problem) []*models.Problem {
	copied := make([]*models.Problem, 0, len(problems))
	for _, problem := range problems {
		p := *problem
		p.RubricItems = make([]*models.RubricItem, 0, len(problem.RubricItems))
		for _, item := range problem.RubricItems {
			i := *item
			p.RubricItems = append(p.RubricItems, &i)
		}
		copied = append(copied, &p)
	}
	return copied
}

// problemsToDocs serializes problems into the lowercase-keyed map form stored
// in Firestore, matching the mapstructure tags the listeners decode with.
func problemsToDocs(problems []*models.Problem) []map[string]interface{} {
	docs := make([]map[string]interface{}, 0, len(problems))
	for _, problem := range problems {
		items := make([]map[string]interface{}, 0, len(problem.RubricItems))
		for _, item := range problem.RubricItems {
			items = append(items, map[string]interface{}{
				"id":          item.ID,
				"description": item.Description,
				"points":      item.Points,
			})
		}
		docs = append(docs, map[string]interface{}{
			"id":                problem.ID,
			"question":          problem.Question,
			"referenceSolution": problem.ReferenceSolution,
			"maxPoints":         problem.MaxPoints,
			"rubricItems":       items,
			"rubricFinalized":   problem.RubricFinalized,
		})
	}
	return docs
}
