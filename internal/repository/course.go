package repository

import (
	"fmt"
	"log"

	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"

	"cloud.google.com/go/firestore"
	"github.com/mitchellh/mapstructure"
)

func (fr *FirebaseRepository) initializeCoursesListener() {
	handleDocs := func(docs []*firestore.DocumentSnapshot) error {
		newCourses := make(map[string]*models.Course)
		for _, doc := range docs {
			if !doc.Exists() {
				continue
			}

			var c models.Course
			err := mapstructure.Decode(doc.Data(), &c)
			if err != nil {
				log.Panicf("Error destructuring document: %v", err)
				return err
			}

			c.ID = doc.Ref.ID
			newCourses[doc.Ref.ID] = &c
		}

		fr.coursesLock.Lock()
		defer fr.coursesLock.Unlock()
		fr.courses = newCourses

		return nil
	}

	done := make(chan bool)
	go func() {
		err := fr.createCollectionInitializer(models.FirestoreCoursesCollection, done, handleDocs)
		if err != nil {
			log.Panicf("%v collection listener error: %v\n", models.FirestoreCoursesCollection, err)
		}
	}()
	<-done
}

// GetCourseByID gets the Course from the courses map corresponding to the provided course ID.
func (fr *FirebaseRepository) GetCourseByID(ID string) (*models.Course, error) {
	fr.coursesLock.RLock()
	defer fr.coursesLock.RUnlock()

	if val, ok := fr.courses[ID]; ok {
		return val, nil
	} else {
		return nil, qerrors.CourseNotFoundError
	}
}

func (fr *FirebaseRepository) CreateCourse(c *models.CreateCourseRequest) (course *models.Course, err error) {
	course = &models.Course{
		Title:         c.Title,
		Code:          c.Code,
		Description:   c.Description,
		InstructorIDs: []string{c.CreatedBy.ID},
		StudentIDs:    []string{},
		AssignmentIDs: []string{},
	}

	ref, _, err := fr.firestoreClient.Collection(models.FirestoreCoursesCollection).Add(fr.ctx, map[string]interface{}{
		"title":         course.Title,
		"code":          course.Code,
		"description":   course.Description,
		"instructorIDs": course.InstructorIDs,
		"studentIDs":    course.StudentIDs,
		"assignmentIDs": course.AssignmentIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating course: %v\n", err)
	}
	course.ID = ref.ID

	// the creator now teaches this course
	_, err = fr.firestoreClient.Collection(models.FirestoreUserProfilesCollection).Doc(c.CreatedBy.ID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "role",
			Value: models.RoleInstructor,
		},
		{
			Path:  "courses",
			Value: firestore.ArrayUnion(course.ID),
		},
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (fr *FirebaseRepository) DeleteCourse(c *models.DeleteCourseRequest) error {
	// Get this course's info.
	course, err := fr.GetCourseByID(c.CourseID)
	if err != nil {
		return err
	}

	// Remove the course from every member's course list.
	members := append(append([]string{}, course.InstructorIDs...), course.StudentIDs...)
	for _, userID := range members {
		_, err = fr.firestoreClient.Collection(models.FirestoreUserProfilesCollection).Doc(userID).Update(fr.ctx, []firestore.Update{
			{
				Path:  "courses",
				Value: firestore.ArrayRemove(course.ID),
			},
		})
		if err != nil {
			return err
		}
	}

	// Delete the course.
	_, err = fr.firestoreClient.Collection(models.FirestoreCoursesCollection).Doc(c.CourseID).Delete(fr.ctx)
	return err
}

func (fr *FirebaseRepository) EditCourse(c *models.EditCourseRequest) error {
	_, err := fr.firestoreClient.Collection(models.FirestoreCoursesCollection).Doc(c.CourseID).Update(fr.ctx, []firestore.Update{
		{Path: "title", Value: c.Title},
		{Path: "code", Value: c.Code},
		{Path: "description", Value: c.Description},
	})
	return err
}

// EnrollStudent adds the user with the given email to the course roster, and
// the course to the user's course list.
func (fr *FirebaseRepository) EnrollStudent(c *models.EnrollStudentRequest) error {
	if err := validateEmail(c.Email); err != nil {
		return err
	}

	user, err := fr.GetUserByEmail(c.Email)
	if err != nil {
		return err
	}

	_, err = fr.firestoreClient.Collection(models.FirestoreCoursesCollection).Doc(c.CourseID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "studentIDs",
			Value: firestore.ArrayUnion(user.ID),
		},
	})
	if err != nil {
		return err
	}

	_, err = fr.firestoreClient.Collection(models.FirestoreUserProfilesCollection).Doc(user.ID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "courses",
			Value: firestore.ArrayUnion(c.CourseID),
		},
	})
	return err
}

// AddCourseStaff adds the user with the given email as an instructor of the course.
func (fr *FirebaseRepository) AddCourseStaff(c *models.AddCourseStaffRequest) error {
	if err := validateEmail(c.Email); err != nil {
		return err
	}

	user, err := fr.GetUserByEmail(c.Email)
	if err != nil {
		return err
	}

	_, err = fr.firestoreClient.Collection(models.FirestoreCoursesCollection).Doc(c.CourseID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "instructorIDs",
			Value: firestore.ArrayUnion(user.ID),
		},
	})
	if err != nil {
		return err
	}

	_, err = fr.firestoreClient.Collection(models.FirestoreUserProfilesCollection).Doc(user.ID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "role",
			Value: models.RoleInstructor,
		},
		{
			Path:  "courses",
			Value: firestore.ArrayUnion(c.CourseID),
		},
	})
	return err
}

func (fr *FirebaseRepository) RemoveCourseStaff(c *models.RemoveCourseStaffRequest) error {
	_, err := fr.firestoreClient.Collection(models.FirestoreCoursesCollection).Doc(c.CourseID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "instructorIDs",
			Value: firestore.ArrayRemove(c.UserID),
		},
	})
	if err != nil {
		return err
	}
	_, err = fr.firestoreClient.Collection(models.FirestoreUserProfilesCollection).Doc(c.UserID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "courses",
			Value: firestore.ArrayRemove(c.CourseID),
		},
	})
	return err
}
