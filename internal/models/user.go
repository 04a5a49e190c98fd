package models

const (
	FirestoreUserProfilesCollection = "user_profiles"
)

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
)

// Profile is a collection of standard profile information for a user.
// This struct separates client-safe profile information from internal user metadata.
type Profile struct {
	DisplayName string   `json:"displayName" mapstructure:"displayName"`
	Email       string   `json:"email" mapstructure:"email"`
	PhotoURL    string   `json:"photoUrl,omitempty" mapstructure:"photoUrl"`
	Role        UserRole `json:"role" mapstructure:"role"`
	IsAdmin     bool     `json:"isAdmin,omitempty" mapstructure:"isAdmin"`
	// Courses is the set of course IDs the user is enrolled in or teaches.
	Courses []string `json:"courses" mapstructure:"courses"`
}

// User represents a registered user.
type User struct {
	*Profile
	ID                 string `json:"id" mapstructure:"id"`
	Disabled           bool
	CreationTimestamp  int64
	LastLogInTimestamp int64
}

// UpdateUserRequest is the parameter struct for the UpdateUser function.
type UpdateUserRequest struct {
	// Will be set from context
	UserID      string `json:",omitempty"`
	DisplayName string `json:"displayName"`
}

// MakeAdminByEmailRequest is the parameter struct for the MakeAdminByEmail function.
type MakeAdminByEmailRequest struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}
