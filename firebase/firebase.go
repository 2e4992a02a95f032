package firebase

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Clients bundles the Firebase services the backend uses.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
}

// credentialOptions accepts either inline service-account JSON or a path to
// a key file. With neither, application default credentials apply.
func credentialOptions(credentials string, log *zap.Logger) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.HasPrefix(strings.TrimSpace(credentials), "{"):
		log.Info("Using Firebase credentials from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(credentials)))
	case credentials != "":
		log.Info("Using Firebase credentials from file", zap.String("path", credentials))
		opts = append(opts, option.WithCredentialsFile(credentials))
	default:
		log.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}
	return opts
}

// Init creates the Firebase app with its Firestore and Admin auth clients.
func Init(ctx context.Context, projectID, credentials string, log *zap.Logger) (*Clients, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, credentialOptions(credentials, log)...)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("auth client: %w", err)
	}

	log.Info("Firebase initialized successfully", zap.String("project_id", projectID))
	return &Clients{App: app, Firestore: fs, Auth: authClient}, nil
}

func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
