package models

var (
	FirestoreCoursesCollection = "courses"
)

type Course struct {
	ID            string   `json:"id" mapstructure:"id"`
	Title         string   `json:"title" mapstructure:"title"`
	Code          string   `json:"code" mapstructure:"code"`
	Description   string   `json:"description" mapstructure:"description"`
	InstructorIDs []string `json:"instructorIDs" mapstructure:"instructorIDs"`
	StudentIDs    []string `json:"studentIDs" mapstructure:"studentIDs"`
	AssignmentIDs []string `json:"assignmentIDs" mapstructure:"assignmentIDs"`
}

// HasStudent reports whether the given user is enrolled in the course.
func (c *Course) HasStudent(userID string) bool {
	for _, id := range c.StudentIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasInstructor reports whether the given user teaches the course.
func (c *Course) HasInstructor(userID string) bool {
	for _, id := range c.InstructorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type GetCourseRequest struct {
	CourseID string `json:"courseID"`
}

type CreateCourseRequest struct {
	Title       string `json:"title"`
	Code        string `json:"code"`
	Description string `json:"description"`
	CreatedBy   *User  `json:",omitempty"`
}

type DeleteCourseRequest struct {
	CourseID string `json:"courseID"`
}

type EditCourseRequest struct {
	CourseID    string `json:"courseID"`
	Title       string `json:"title"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// EnrollStudentRequest is the parameter struct to the EnrollStudent function.
type EnrollStudentRequest struct {
	CourseID string `json:"courseID,omitempty"`
	Email    string `json:"email"`
}

// AddCourseStaffRequest is the parameter struct to the AddCourseStaff function.
type AddCourseStaffRequest struct {
	CourseID string `json:"courseID,omitempty"`
	Email    string `json:"email"`
}

// RemoveCourseStaffRequest is the parameter struct to the RemoveCourseStaff function.
type RemoveCourseStaffRequest struct {
	CourseID string `json:"courseID,omitempty"`
	UserID   string `json:"userID"`
}
