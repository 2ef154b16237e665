// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CAREERBOT_SERVER_PORT.
const EnvPrefix = "CAREERBOT"

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// base config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// environment overlay, optional
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// AutomaticEnv only sees keys viper already knows, so overridable keys are bound up front.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.environment",
		"server.host", "server.port",
		"model.catalog_path", "model.artifact_dir", "model.confidence_threshold",
		"session.backend", "session.ttl_seconds", "session.history_limit",
		"database.redis.address", "database.redis.password", "database.redis.db",
		"logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking towards the project root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "careerbot"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15000
	}

	// Model defaults
	if cfg.Model.CatalogPath == "" {
		cfg.Model.CatalogPath = "configs/intents.json"
	}
	if cfg.Model.ArtifactDir == "" {
		cfg.Model.ArtifactDir = "model"
	}
	if cfg.Model.ConfidenceThreshold == 0 {
		cfg.Model.ConfidenceThreshold = 0.25
	}

	// Training defaults
	if cfg.Training.MaxFeatures == 0 {
		cfg.Training.MaxFeatures = 5000
	}
	if len(cfg.Training.HiddenLayers) == 0 {
		cfg.Training.HiddenLayers = []int{128, 64}
	}
	if cfg.Training.Dropout == 0 {
		cfg.Training.Dropout = 0.5
	}
	if cfg.Training.LearningRate == 0 {
		cfg.Training.LearningRate = 0.01
	}
	if cfg.Training.Decay == 0 {
		cfg.Training.Decay = 1e-6
	}
	if cfg.Training.Momentum == 0 {
		cfg.Training.Momentum = 0.9
	}
	if cfg.Training.Epochs == 0 {
		cfg.Training.Epochs = 200
	}
	if cfg.Training.BatchSize == 0 {
		cfg.Training.BatchSize = 5
	}
	if cfg.Training.Seed == 0 {
		cfg.Training.Seed = 42
	}

	// Session defaults
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = BackendMemory
	}
	if cfg.Session.TTLSeconds == 0 {
		cfg.Session.TTLSeconds = 86400
	}
	if cfg.Session.SweepIntervalSeconds == 0 {
		cfg.Session.SweepIntervalSeconds = 60
	}
	if cfg.Session.HistoryLimit == 0 {
		cfg.Session.HistoryLimit = 200
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "careerbot:session:"
	}

	if cfg.Database.Redis.PoolSize == 0 {
		cfg.Database.Redis.PoolSize = 10
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Model.ConfidenceThreshold < 0 || cfg.Model.ConfidenceThreshold >= 1 {
		return fmt.Errorf("model.confidence_threshold must be in [0, 1), got %v", cfg.Model.ConfidenceThreshold)
	}

	if cfg.Training.Dropout < 0 || cfg.Training.Dropout >= 1 {
		return fmt.Errorf("training.dropout must be in [0, 1), got %v", cfg.Training.Dropout)
	}
	if cfg.Training.BatchSize < 1 {
		return fmt.Errorf("training.batch_size must be positive")
	}
	for _, units := range cfg.Training.HiddenLayers {
		if units < 1 {
			return fmt.Errorf("training.hidden_layers entries must be positive")
		}
	}

	switch cfg.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when session.backend is redis")
		}
	default:
		return fmt.Errorf("session.backend must be %q or %q, got %q", BackendMemory, BackendRedis, cfg.Session.Backend)
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}

// SessionSweepInterval returns how often the memory store drops expired sessions.
func (c *Config) SessionSweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalSeconds) * time.Second
}
