// internal/platform/di/infra.go
package di

import (
	"context"
	"strings"
	"sync"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	credentialout "storefront/internal/adapters/out/credential"
	fsout "storefront/internal/adapters/out/firestore"
	httpout "storefront/internal/adapters/out/http"
	"storefront/internal/adapters/out/localstorage"
	"storefront/internal/adapters/out/memory"
	sqliteout "storefront/internal/adapters/out/sqlite"
	sessiondom "storefront/internal/domain/session"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/metrics"
)

// Infra is the shared runtime infrastructure.
// - owns external clients (backend REST, Firestore, Firebase Auth, SQLite)
// - owns the metrics registry
//
// Infra must not depend on handlers.
type Infra struct {
	Config *appcfg.Config

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Backend   *httpout.Client
	Validator sessiondom.Validator

	// exactly one of these backs device local storage
	SQLite    *sqliteout.DB
	Firestore *fsout.Store

	memMu sync.Mutex
	mem   map[string]*memory.LocalStorage
}

// NewInfra initializes shared infra. The local storage backend is strict;
// Firebase Auth falls back to the JWT claims validator with a warning.
func NewInfra(ctx context.Context, cfg *appcfg.Config) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("di.infra: config is nil")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	inf := &Infra{
		Config:   cfg,
		Registry: reg,
		Metrics:  metrics.New(reg),
		Backend:  httpout.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout),
	}
	log.Printf("[di.infra] backend baseURL=%s timeout=%s", inf.Backend.BaseURL(), cfg.BackendTimeout)

	// 1) local storage (strict)
	switch cfg.LocalStorage {
	case appcfg.StorageSQLite:
		db, err := sqliteout.Open(cfg.SQLitePath)
		if err != nil {
			return nil, errors.Wrapf(err, "di.infra: open sqlite %s", cfg.SQLitePath)
		}
		inf.SQLite = db
		log.Printf("[di.infra] local storage = sqlite path=%s", cfg.SQLitePath)

	case appcfg.StorageFirestore:
		fs, err := fsout.Open(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, errors.Wrap(err, "di.infra: firestore")
		}
		inf.Firestore = fs
		log.Printf("[di.infra] local storage = firestore project=%s", cfg.FirestoreProjectID)

	default:
		inf.mem = make(map[string]*memory.LocalStorage)
		log.Printf("[di.infra] local storage = memory (guest carts are lost on restart)")
	}

	// 2) credential validator (best-effort firebase)
	inf.Validator = credentialout.NewJWTValidator()
	if cfg.AuthValidator == appcfg.ValidatorFirebase {
		v, err := newFirebaseValidator(ctx, cfg)
		if err != nil {
			log.Printf("[di.infra] WARN: firebase auth init failed: %v (using jwt claims validator)", err)
		} else {
			inf.Validator = v
			log.Printf("[di.infra] Firebase Auth initialized project=%s", cfg.FirebaseProjectID)
		}
	}

	return inf, nil
}

func newFirebaseValidator(ctx context.Context, cfg *appcfg.Config) (*credentialout.FirebaseValidator, error) {
	var opts []option.ClientOption
	if f := strings.TrimSpace(cfg.FirestoreCredentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "firebase.NewApp")
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "firebase auth")
	}
	return credentialout.NewFirebaseValidator(authClient), nil
}

// StorageFor returns the local storage of one device.
func (i *Infra) StorageFor(deviceID string) localstorage.Storage {
	switch {
	case i.SQLite != nil:
		return i.SQLite.Device(deviceID)
	case i.Firestore != nil:
		return i.Firestore.Device(deviceID)
	}

	i.memMu.Lock()
	defer i.memMu.Unlock()
	s, ok := i.mem[deviceID]
	if !ok {
		s = memory.NewLocalStorage()
		i.mem[deviceID] = s
	}
	return s
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	var firstErr error
	if i.SQLite != nil {
		if err := i.SQLite.Close(); err != nil {
			firstErr = err
		}
	}
	if i.Firestore != nil {
		if err := i.Firestore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
