package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: careerbot
model:
  catalog_path: intents.json
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "intents.json", cfg.Model.CatalogPath)
	assert.Equal(t, "model", cfg.Model.ArtifactDir)
	assert.InDelta(t, 0.25, cfg.Model.ConfidenceThreshold, 1e-9)
	assert.Equal(t, []int{128, 64}, cfg.Training.HiddenLayers)
	assert.Equal(t, 200, cfg.Training.Epochs)
	assert.Equal(t, 5, cfg.Training.BatchSize)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, time.Minute, cfg.SessionSweepInterval())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  redis:
    address: ${TEST_CAREERBOT_REDIS}
session:
  backend: redis
`)
	t.Setenv("TEST_CAREERBOT_REDIS", "localhost:6380")
	t.Setenv("CAREERBOT_SERVER_PORT", "9100")
	t.Setenv("CAREERBOT_LOGGING_LEVEL", "debug")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "localhost:6380", cfg.Database.Redis.Address)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name: "redis backend without address",
			content: `
session:
  backend: redis
`,
			errMsg: "database.redis.address is required",
		},
		{
			name: "unknown backend",
			content: `
session:
  backend: etcd
`,
			errMsg: "session.backend must be",
		},
		{
			name: "threshold out of range",
			content: `
model:
  confidence_threshold: 1.5
`,
			errMsg: "model.confidence_threshold",
		},
		{
			name: "dropout out of range",
			content: `
training:
  dropout: 1.0
`,
			errMsg: "training.dropout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
