// internal/infra/config/config.go
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Prefix of every variable. Each key also falls back to its unprefixed name
// (PORT, FIRESTORE_PROJECT_ID, ...) so Cloud Run style env keeps working.
const Prefix = "STOREFRONT"

// Local storage backends.
const (
	StorageSQLite    = "sqlite"
	StorageFirestore = "firestore"
	StorageMemory    = "memory"
)

// Credential validators.
const (
	ValidatorJWT      = "jwt"
	ValidatorFirebase = "firebase"
)

// Config holds the environment configuration of the storefront binaries.
type Config struct {
	Port string `envconfig:"PORT" default:"8081"`

	BackendBaseURL string        `envconfig:"BACKEND_BASE_URL" default:"http://localhost:8080/doan"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`

	LocalStorage string `envconfig:"LOCAL_STORAGE" default:"sqlite"`
	SQLitePath   string `envconfig:"SQLITE_PATH" default:"storefront-local.db"`

	FirestoreProjectID       string `envconfig:"FIRESTORE_PROJECT_ID"`
	FirestoreCredentialsFile string `envconfig:"FIRESTORE_CREDENTIALS_FILE"`

	// Firebase Auth project; falls back to FirestoreProjectID
	FirebaseProjectID string `envconfig:"FIREBASE_PROJECT_ID"`
	AuthValidator     string `envconfig:"AUTH_VALIDATOR" default:"jwt"`

	CORSOrigin     string        `envconfig:"CORS_ORIGIN" default:"http://localhost:5173"`
	SessionIdleTTL time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "config: process env")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	c.BackendBaseURL = strings.TrimRight(strings.TrimSpace(c.BackendBaseURL), "/")
	c.LocalStorage = strings.ToLower(strings.TrimSpace(c.LocalStorage))
	c.AuthValidator = strings.ToLower(strings.TrimSpace(c.AuthValidator))
	if strings.TrimSpace(c.FirebaseProjectID) == "" {
		c.FirebaseProjectID = c.FirestoreProjectID
	}
}

func (c *Config) Validate() error {
	switch c.LocalStorage {
	case StorageSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("config: SQLITE_PATH is required for sqlite local storage")
		}
	case StorageFirestore:
		if strings.TrimSpace(c.FirestoreProjectID) == "" {
			return errors.New("config: FIRESTORE_PROJECT_ID is required for firestore local storage")
		}
	case StorageMemory:
	default:
		return errors.Errorf("config: unknown LOCAL_STORAGE %q", c.LocalStorage)
	}

	switch c.AuthValidator {
	case ValidatorJWT:
	case ValidatorFirebase:
		if strings.TrimSpace(c.FirebaseProjectID) == "" {
			return errors.New("config: FIREBASE_PROJECT_ID is required for firebase auth")
		}
	default:
		return errors.Errorf("config: unknown AUTH_VALIDATOR %q", c.AuthValidator)
	}

	if c.BackendBaseURL == "" {
		return errors.New("config: BACKEND_BASE_URL is empty")
	}
	return nil
}

// ConfigureLogging applies LOG_LEVEL / LOG_FORMAT to the global logger.
func (c *Config) ConfigureLogging() {
	lvl, err := log.ParseLevel(strings.TrimSpace(c.LogLevel))
	if err != nil {
		log.Printf("[config] WARN: invalid LOG_LEVEL %q, using info", c.LogLevel)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(strings.TrimSpace(c.LogFormat), "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
