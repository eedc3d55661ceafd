// internal/adapters/out/firestore/store.go
package firestore

import (
	"context"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Store owns the Firestore client behind device local storage. It mirrors
// sqlite.DB: one client, one LocalStorageFS per device.
type Store struct {
	client    *firestore.Client
	projectID string
}

// Open connects to Firestore. An empty credentialsFile uses Application
// Default Credentials; FIRESTORE_EMULATOR_HOST is honoured by the client.
func Open(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("firestore: project id is empty")
	}

	var opts []option.ClientOption
	if f := strings.TrimSpace(credentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "firestore: new client project=%s", projectID)
	}

	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		log.Printf("[firestore] using emulator %s (project: %s)", host, projectID)
	} else {
		log.Printf("[firestore] connected (project: %s)", projectID)
	}
	return &Store{client: client, projectID: projectID}, nil
}

func (s *Store) ProjectID() string { return s.projectID }

// Device returns the local storage document of one device.
func (s *Store) Device(deviceID string) *LocalStorageFS {
	return NewLocalStorageFS(s.client, deviceID)
}

func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
