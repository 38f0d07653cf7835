package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	DocIntel    DocIntelConfig
	Batch       BatchConfig
	Withholding WithholdingConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DocIntelConfig holds Document Intelligence service configuration
type DocIntelConfig struct {
	Endpoint     string
	APIKey       string
	ModelID      string
	APIVersion   string
	PollInterval time.Duration
	Timeout      time.Duration
}

// BatchConfig holds batch orchestration configuration
type BatchConfig struct {
	Delay        time.Duration // pause between documents, courtesy to the service
	SnapshotPath string
}

// WithholdingConfig holds the statutory withholding rates applied to
// normalized subtotal/tax amounts. ICA varies by jurisdiction and defaults
// to zero until a rate is configured.
type WithholdingConfig struct {
	SourceRate float64 // retefuente, fraction of subtotal
	VATRate    float64 // reteiva, fraction of tax amount
	ICARate    float64 // reteica, fraction of subtotal
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		DocIntel: DocIntelConfig{
			Endpoint:     getEnv("DOCINTEL_ENDPOINT", ""),
			APIKey:       getEnv("DOCINTEL_API_KEY", ""),
			ModelID:      getEnv("DOCINTEL_MODEL_ID", "prebuilt-invoice"),
			APIVersion:   getEnv("DOCINTEL_API_VERSION", "2023-07-31"),
			PollInterval: getEnvAsDuration("DOCINTEL_POLL_INTERVAL", 2*time.Second),
			Timeout:      getEnvAsDuration("DOCINTEL_TIMEOUT", 2*time.Minute),
		},
		Batch: BatchConfig{
			Delay:        getEnvAsDuration("BATCH_DELAY", time.Second),
			SnapshotPath: getEnv("BATCH_SNAPSHOT_PATH", "./documents_analyzed.json"),
		},
		Withholding: WithholdingConfig{
			SourceRate: getEnvAsFloat64("RETEFUENTE_RATE", 0.025),
			VATRate:    getEnvAsFloat64("RETEIVA_RATE", 0.15),
			ICARate:    getEnvAsFloat64("RETEICA_RATE", 0),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.DocIntel.Endpoint == "" {
		return NewAppError("CONFIG_ERROR", "DOCINTEL_ENDPOINT is required", ErrInvalidInput)
	}
	if c.DocIntel.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "DOCINTEL_API_KEY is required", ErrInvalidInput)
	}
	return nil
}
