// internal/adapters/out/firestore/local_storage_fs.go
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultLocalStorageCollection holds one document per device.
const DefaultLocalStorageCollection = "local_storage"

// LocalStorageTTL is how long an untouched device document lives
// (Firestore TTL should be configured on expiresAt).
const LocalStorageTTL = 30 * 24 * time.Hour

// LocalStorageFS implements localstorage.Storage on a Firestore document.
//
// Document design:
// - collection: local_storage
// - docId: deviceId
// - fields: items(map key -> string), updatedAt, expiresAt
type LocalStorageFS struct {
	Client     *firestore.Client
	Collection string
	DeviceID   string
}

func NewLocalStorageFS(client *firestore.Client, deviceID string) *LocalStorageFS {
	return &LocalStorageFS{
		Client:     client,
		Collection: DefaultLocalStorageCollection,
		DeviceID:   strings.TrimSpace(deviceID),
	}
}

func (r *LocalStorageFS) doc() (*firestore.DocumentRef, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("local_storage_fs: firestore client is nil")
	}
	if r.DeviceID == "" {
		return nil, errors.New("local_storage_fs: deviceID is empty")
	}
	col := strings.TrimSpace(r.Collection)
	if col == "" {
		col = DefaultLocalStorageCollection
	}
	return r.Client.Collection(col).Doc(r.DeviceID), nil
}

func (r *LocalStorageFS) GetItem(ctx context.Context, key string) (string, bool, error) {
	ref, err := r.doc()
	if err != nil {
		return "", false, err
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "local_storage_fs: get %s", key)
	}

	// read the raw map so a wrongly-typed field does not fail the whole document
	raw := snap.Data()
	items, ok := raw["items"].(map[string]any)
	if !ok || items == nil {
		return "", false, nil
	}
	v, ok := items[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, nil
	}
	return s, true, nil
}

func (r *LocalStorageFS) SetItem(ctx context.Context, key, value string) error {
	ref, err := r.doc()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = ref.Set(ctx, map[string]any{
		"items":     map[string]any{key: value},
		"updatedAt": now,
		"expiresAt": now.Add(LocalStorageTTL),
	}, firestore.MergeAll)
	return errors.Wrapf(err, "local_storage_fs: set %s", key)
}

func (r *LocalStorageFS) RemoveItem(ctx context.Context, key string) error {
	ref, err := r.doc()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = ref.Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"items", key}, Value: firestore.Delete},
		{Path: "updatedAt", Value: now},
		{Path: "expiresAt", Value: now.Add(LocalStorageTTL)},
	})
	if err != nil && status.Code(err) == codes.NotFound {
		return nil
	}
	return errors.Wrapf(err, "local_storage_fs: remove %s", key)
}

// DeleteDevice drops the whole device document.
func (r *LocalStorageFS) DeleteDevice(ctx context.Context) error {
	ref, err := r.doc()
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx)
	return errors.Wrap(err, "local_storage_fs: delete device")
}
