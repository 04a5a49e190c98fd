package firebase

import (
	"context"

	firebaseSDK "firebase.google.com/go"
	"google.golang.org/api/option"
)

// App wraps the initialized Firebase app together with the context used for
// all Firestore and Auth calls. It is constructed once in main and passed to
// the repository, and lives until process exit.
type App struct {
	App     *firebaseSDK.App
	Context context.Context
}

// NewApp initializes a Firebase app using the given service account key file.
func NewApp(ctx context.Context, credentialsFile string) (*App, error) {
	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebaseSDK.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, err
	}

	return &App{App: app, Context: ctx}, nil
}
