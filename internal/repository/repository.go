package repository

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gradebetter/internal/config"
	"gradebetter/internal/firebase"
	"gradebetter/internal/models"

	firebaseAuth "firebase.google.com/go/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/firestore"
)

// FirebaseRepository queries and persists all entities in Firestore. It is
// constructed once in main and injected into the router layer; the Firestore
// client lives until process exit.
//
// Courses, assignments, and user profiles are mirrored into in-memory maps by
// snapshot listeners so reads of those collections don't round-trip to
// Firestore. Submissions and discrepancy reports are always queried directly.
type FirebaseRepository struct {
	cfg             *config.ServerConfig
	ctx             context.Context
	authClient      *firebaseAuth.Client
	firestoreClient *firestore.Client

	profilesLock *sync.RWMutex
	profiles     map[string]*models.Profile

	coursesLock *sync.RWMutex
	courses     map[string]*models.Course

	assignmentsLock *sync.RWMutex
	assignments     map[string]*models.Assignment
}

func NewFirebaseRepository(fbApp *firebase.App, cfg *config.ServerConfig) (*FirebaseRepository, error) {
	fr := &FirebaseRepository{
		cfg:             cfg,
		ctx:             fbApp.Context,
		profilesLock:    &sync.RWMutex{},
		profiles:        make(map[string]*models.Profile),
		coursesLock:     &sync.RWMutex{},
		courses:         make(map[string]*models.Course),
		assignmentsLock: &sync.RWMutex{},
		assignments:     make(map[string]*models.Assignment),
	}

	authClient, err := fbApp.App.Auth(fbApp.Context)
	if err != nil {
		return nil, fmt.Errorf("Auth client error: %v\n", err)
	}
	fr.authClient = authClient

	firestoreClient, err := fbApp.App.Firestore(fbApp.Context)
	if err != nil {
		return nil, fmt.Errorf("Firestore client error: %v\n", err)
	}
	fr.firestoreClient = firestoreClient

	// Execute the listeners sequentially, in case later listeners need to utilize data fetched
	// by previous listeners
	initFns := []func(){
		fr.initializeUserProfilesListener,
		fr.initializeCoursesListener,
		fr.initializeAssignmentsListener,
	}
	for _, initFn := range initFns {
		initFn()
	}

	log.Printf("✅ Successfully created Firebase repository client")
	return fr, nil
}

// Close tears down the Firestore client. Called at process exit.
func (fr *FirebaseRepository) Close() error {
	return fr.firestoreClient.Close()
}

// createCollectionInitializer attaches a snapshot listener to the given
// collection, feeding every snapshot's documents to handleDocs and signaling
// done after the first snapshot so callers can block until the in-memory
// mirror is warm.
func (fr *FirebaseRepository) createCollectionInitializer(
	collection string, done chan<- bool,
	handleDocs func(docs []*firestore.DocumentSnapshot) error) error {

	it := fr.firestoreClient.Collection(collection).Snapshots(fr.ctx)
	var doOnce sync.Once

	for {
		snap, err := it.Next()
		// DeadlineExceeded will be returned when ctx is cancelled.
		if status.Code(err) == codes.DeadlineExceeded {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Snapshots.Next: %v", err)
		}
		if snap != nil {
			docs, err := snap.Documents.GetAll()
			if err != nil {
				return fmt.Errorf("Documents.GetAll: %v", err)
			}
			if err := handleDocs(docs); err != nil {
				return err
			}

			doOnce.Do(func() {
				log.Printf("✅ Started %v collection listener.", collection)
				done <- true
			})
		}
	}
}
