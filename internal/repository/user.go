package repository

import (
	"fmt"
	"net/http"
	"strings"

	"gradebetter/internal/models"
	"gradebetter/internal/qerrors"

	"cloud.google.com/go/firestore"
	"github.com/mitchellh/mapstructure"

	firebaseAuth "firebase.google.com/go/auth"
)

func (fr *FirebaseRepository) initializeUserProfilesListener() {
	handleDocs := func(docs []*firestore.DocumentSnapshot) error {
		newProfiles := make(map[string]*models.Profile)
		for _, doc := range docs {
			if !doc.Exists() {
				continue
			}

			var userProfile models.Profile
			err := mapstructure.Decode(doc.Data(), &userProfile)
			if err != nil {
				return err
			}
			newProfiles[doc.Ref.ID] = &userProfile
		}

		fr.profilesLock.Lock()
		defer fr.profilesLock.Unlock()
		fr.profiles = newProfiles

		return nil
	}

	done := make(chan bool)
	go func() {
		err := fr.createCollectionInitializer(models.FirestoreUserProfilesCollection, done, handleDocs)
		if err != nil {
			panic(fmt.Sprintf("%v collection listener error: %v\n", models.FirestoreUserProfilesCollection, err))
		}
	}()
	<-done
}

// VerifySessionCookie verifies that the given session cookie is valid and returns the associated User if valid.
func (fr *FirebaseRepository) VerifySessionCookie(sessionCookie *http.Cookie) (*models.User, error) {
	decoded, err := fr.authClient.VerifySessionCookieAndCheckRevoked(fr.ctx, sessionCookie.Value)
	if err != nil {
		return nil, fmt.Errorf("error verifying cookie: %v\n", err)
	}

	user, err := fr.GetUserByID(decoded.UID)
	if err != nil {
		return nil, fmt.Errorf("error getting user from cookie: %v\n", err)
	}

	return user, nil
}

// CreateSessionCookie mints a session cookie from a verified ID token.
func (fr *FirebaseRepository) CreateSessionCookie(idToken string) (string, error) {
	return fr.authClient.SessionCookie(fr.ctx, idToken, fr.cfg.SessionCookieExpiration)
}

func (fr *FirebaseRepository) GetUserByID(id string) (*models.User, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	fbUser, err := fr.authClient.GetUser(fr.ctx, id)
	if err != nil {
		return nil, qerrors.UserNotFoundError
	}

	// Check the Firebase user's email against the list of allowed domains.
	if len(fr.cfg.AllowedEmailDomains) > 0 {
		if err := validateEmail(fbUser.Email); err != nil {
			_ = fr.authClient.DeleteUser(fr.ctx, fbUser.UID)
			return nil, qerrors.InvalidEmailError
		}
		domain := strings.Split(fbUser.Email, "@")[1]
		if !contains(fr.cfg.AllowedEmailDomains, domain) {
			// invalid email domain, delete the user from Firebase Auth
			_ = fr.authClient.DeleteUser(fr.ctx, fbUser.UID)
			return nil, qerrors.InvalidEmailError
		}
	}

	profile, err := fr.getUserProfile(fbUser.UID)
	if err != nil {
		// no profile for the user found, create one on first login.
		profile = &models.Profile{
			DisplayName: fbUser.DisplayName,
			Email:       fbUser.Email,
			Role:        models.RoleStudent,
			// if there are no registered users, make the first one an admin
			IsAdmin: fr.getUserCount() == 0,
		}
		_, err = fr.firestoreClient.Collection(models.FirestoreUserProfilesCollection).Doc(fbUser.UID).Set(fr.ctx, map[string]interface{}{
			"displayName": profile.DisplayName,
			"email":       profile.Email,
			"id":          fbUser.UID,
			"role":        profile.Role,
			"isAdmin":     profile.IsAdmin,
			"courses":     []string{},
		})

		if err != nil {
			return nil, fmt.Errorf("error creating user profile: %v\n", err)
		}
	}

	return fbUserToUserRecord(fbUser, profile), nil
}

// GetUserByEmail retrieves the User associated with the given email.
func (fr *FirebaseRepository) GetUserByEmail(email string) (*models.User, error) {
	userID, err := fr.GetIDByEmail(email)
	if err != nil {
		return nil, err
	}

	return fr.GetUserByID(userID)
}

func (fr *FirebaseRepository) GetIDByEmail(email string) (string, error) {
	// Get user by email.
	iter := fr.firestoreClient.Collection(models.FirestoreUserProfilesCollection).Where("email", "==", email).Documents(fr.ctx)
	doc, err := iter.Next()
	if err != nil {
		return "", qerrors.UserNotFoundError
	}
	// Cast.
	data := doc.Data()
	return data["id"].(string), nil
}

func (fr *FirebaseRepository) UpdateUser(r *models.UpdateUserRequest) error {
	if r.DisplayName == "" {
		return qerrors.InvalidBody
	}

	_, err := fr.firestoreClient.Collection(models.FirestoreUserProfilesCollection).Doc(r.UserID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "displayName",
			Value: r.DisplayName,
		},
	})

	return err
}

func (fr *FirebaseRepository) MakeAdminByEmail(u *models.MakeAdminByEmailRequest) error {
	user, err := fr.GetUserByEmail(u.Email)
	if err != nil {
		return err
	}

	_, err = fr.firestoreClient.Collection(models.FirestoreUserProfilesCollection).Doc(user.ID).Update(fr.ctx, []firestore.Update{
		{
			Path:  "isAdmin",
			Value: u.IsAdmin,
		},
	})

	return err
}

// Helpers

// fbUserToUserRecord combines a Firebase UserRecord and a Profile into a User
func fbUserToUserRecord(fbUser *firebaseAuth.UserRecord, profile *models.Profile) *models.User {
	return &models.User{
		ID:                 fbUser.UID,
		Profile:            profile,
		Disabled:           fbUser.Disabled,
		CreationTimestamp:  fbUser.UserMetadata.CreationTimestamp,
		LastLogInTimestamp: fbUser.UserMetadata.LastLogInTimestamp,
	}
}

// getUserProfile gets the Profile from the userProfiles map corresponding to the provided user ID.
func (fr *FirebaseRepository) getUserProfile(id string) (*models.Profile, error) {
	fr.profilesLock.RLock()
	defer fr.profilesLock.RUnlock()

	if val, ok := fr.profiles[id]; ok {
		return val, nil
	} else {
		return nil, fmt.Errorf("No profile found for ID %v\n", id)
	}
}

// getUserCount returns the number of user profiles.
func (fr *FirebaseRepository) getUserCount() int {
	fr.profilesLock.RLock()
	defer fr.profilesLock.RUnlock()

	return len(fr.profiles)
}

func contains(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}

	return false
}

func validateEmail(email string) error {
	if email == "" {
		return qerrors.InvalidEmailError
	}
	if parts := strings.Split(email, "@"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return qerrors.InvalidEmailError
	}
	return nil
}

func validateID(id string) error {
	if id == "" {
		return qerrors.InvalidIDError
	}
	if len(id) > 128 {
		return qerrors.InvalidIDError
	}
	return nil
}
