// Package config loads service configuration from the environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppName    string `mapstructure:"APP_NAME"`
	Port       int    `mapstructure:"PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	PrettyLogs bool   `mapstructure:"PRETTY_LOGS"`

	// PostgreSQL (registry store)
	DatabaseHost                string        `mapstructure:"DB_HOST"`
	DatabasePort                string        `mapstructure:"DB_PORT"`
	DatabaseUserName            string        `mapstructure:"DB_USER_NAME"`
	DatabasePassword            string        `mapstructure:"DB_PASSWORD"`
	DatabaseName                string        `mapstructure:"DB_NAME"`
	DatabaseSSLMode             string        `mapstructure:"DB_SSL_MODE"`
	DatabaseMaxOpenConns        int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DatabaseMaxIdleConns        int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DatabaseConnMaxLifetime     time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DatabaseMigrationFolderPath string        `mapstructure:"DB_MIGRATION_FOLDER_PATH"`

	// Kafka producer (submission outcome events)
	KafkaEnabled      bool     `mapstructure:"KAFKA_ENABLED"`
	KafkaBrokers      []string `mapstructure:"KAFKA_BROKERS"`
	KafkaOutputTopic  string   `mapstructure:"KAFKA_OUTPUT_TOPIC"`
	KafkaBatchSize    int      `mapstructure:"KAFKA_BATCH_SIZE"`
	KafkaBatchTimeout int      `mapstructure:"KAFKA_BATCH_TIMEOUT_MS"`
	KafkaRequiredAcks int      `mapstructure:"KAFKA_REQUIRED_ACKS"`
	KafkaCompression  string   `mapstructure:"KAFKA_COMPRESSION"`

	// Tracing
	TracingEnabled bool `mapstructure:"TRACING_ENABLED"`
}

var defaults = map[string]any{
	"APP_NAME":                 "registry-api",
	"PORT":                     3010,
	"LOG_LEVEL":                "info",
	"PRETTY_LOGS":              false,
	"DB_HOST":                  "localhost",
	"DB_PORT":                  "5432",
	"DB_USER_NAME":             "",
	"DB_PASSWORD":              "",
	"DB_NAME":                  "registry",
	"DB_SSL_MODE":              "disable",
	"DB_MAX_OPEN_CONNS":        25,
	"DB_MAX_IDLE_CONNS":        10,
	"DB_CONN_MAX_LIFETIME":     "10s",
	"DB_MIGRATION_FOLDER_PATH": "db/pg",
	"KAFKA_ENABLED":            false,
	"KAFKA_BROKERS":            "localhost:9092",
	"KAFKA_OUTPUT_TOPIC":       "registry-events",
	"KAFKA_BATCH_SIZE":         100,
	"KAFKA_BATCH_TIMEOUT_MS":   100,
	"KAFKA_REQUIRED_ACKS":      1,
	"KAFKA_COMPRESSION":        "snappy",
	"TRACING_ENABLED":          false,
}

// Load reads configuration from environment variables, applying defaults for
// anything unset.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	for key := range defaults {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Comma-separated broker lists come through as a single string.
	if len(cfg.KafkaBrokers) == 1 && strings.Contains(cfg.KafkaBrokers[0], ",") {
		cfg.KafkaBrokers = strings.Split(cfg.KafkaBrokers[0], ",")
	}

	return &cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	parts := []string{
		"host=" + c.DatabaseHost,
		"port=" + c.DatabasePort,
		"dbname=" + c.DatabaseName,
		"sslmode=" + c.DatabaseSSLMode,
	}
	if c.DatabaseUserName != "" {
		parts = append(parts, "user="+c.DatabaseUserName)
	}
	if c.DatabasePassword != "" {
		parts = append(parts, "password="+c.DatabasePassword)
	}
	return strings.Join(parts, " ")
}
