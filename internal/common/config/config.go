// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Model    ModelConfig    `mapstructure:"model"`
	Training TrainingConfig `mapstructure:"training"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds settings for the HTTP host adapter.
type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ModelConfig points at the intent catalog and the trained artifacts.
type ModelConfig struct {
	CatalogPath         string  `mapstructure:"catalog_path"`
	ArtifactDir         string  `mapstructure:"artifact_dir"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

// TrainingConfig holds the hyperparameters used by the train command.
type TrainingConfig struct {
	MaxFeatures  int     `mapstructure:"max_features"`
	HiddenLayers []int   `mapstructure:"hidden_layers"`
	Dropout      float64 `mapstructure:"dropout"`
	LearningRate float64 `mapstructure:"learning_rate"`
	Decay        float64 `mapstructure:"decay"`
	Momentum     float64 `mapstructure:"momentum"`
	Nesterov     bool    `mapstructure:"nesterov"`
	Epochs       int     `mapstructure:"epochs"`
	BatchSize    int     `mapstructure:"batch_size"`
	Seed         int64   `mapstructure:"seed"`
}

// SessionConfig selects the session store backend.
type SessionConfig struct {
	Backend              string `mapstructure:"backend"` // memory or redis
	TTLSeconds           int    `mapstructure:"ttl_seconds"`
	SweepIntervalSeconds int    `mapstructure:"sweep_interval_seconds"` // memory backend only
	HistoryLimit         int    `mapstructure:"history_limit"`
	KeyPrefix            string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
