package config

import (
	"os"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "BACKEND_BASE_URL", "BACKEND_TIMEOUT", "LOCAL_STORAGE", "SQLITE_PATH",
	"FIRESTORE_PROJECT_ID", "FIRESTORE_CREDENTIALS_FILE", "FIREBASE_PROJECT_ID",
	"AUTH_VALIDATOR", "CORS_ORIGIN", "SESSION_IDLE_TTL", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every key, prefixed and bare, for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		for _, name := range []string{k, Prefix + "_" + k} {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "http://localhost:8080/doan", cfg.BackendBaseURL)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, StorageSQLite, cfg.LocalStorage)
	assert.Equal(t, ValidatorJWT, cfg.AuthValidator)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STOREFRONT_PORT", "9100")
	t.Setenv("BACKEND_BASE_URL", " https://api.example.com/doan/ ")
	t.Setenv("STOREFRONT_LOCAL_STORAGE", "Firestore")
	t.Setenv("FIRESTORE_PROJECT_ID", "furniture-dev")
	t.Setenv("STOREFRONT_AUTH_VALIDATOR", "firebase")
	t.Setenv("SESSION_IDLE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port, "prefixed key wins")
	assert.Equal(t, "https://api.example.com/doan", cfg.BackendBaseURL)
	assert.Equal(t, StorageFirestore, cfg.LocalStorage)
	assert.Equal(t, ValidatorFirebase, cfg.AuthValidator)
	assert.Equal(t, "furniture-dev", cfg.FirebaseProjectID, "falls back to the firestore project")
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTTL)
}

func TestLoadInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "Unknown storage", env: map[string]string{"LOCAL_STORAGE": "redis"}},
		{name: "Firestore without project", env: map[string]string{"LOCAL_STORAGE": "firestore"}},
		{name: "Unknown validator", env: map[string]string{"AUTH_VALIDATOR": "saml"}},
		{name: "Firebase without project", env: map[string]string{"AUTH_VALIDATOR": "firebase"}},
		{name: "Bad duration", env: map[string]string{"BACKEND_TIMEOUT": "soon"}},
		{name: "Empty sqlite path", env: map[string]string{"SQLITE_PATH": " "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestConfigureLogging(t *testing.T) {
	prevLevel, prevFormatter := log.GetLevel(), log.StandardLogger().Formatter
	t.Cleanup(func() {
		log.SetLevel(prevLevel)
		log.SetFormatter(prevFormatter)
	})

	(&Config{LogLevel: "debug", LogFormat: "json"}).ConfigureLogging()
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	(&Config{LogLevel: "loud", LogFormat: "text"}).ConfigureLogging()
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
}
