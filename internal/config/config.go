package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string
	DatabaseURL string
	TablePrefix string
	BatchSize   int
	LogDir      string
	MaxLogFiles int
	Debug       bool
}

// Settings mirrors the optional YAML settings file. Every field has an
// environment-variable override; the file exists so operators can keep the
// connection string out of the shell.
type Settings struct {
	DatabaseURL string `yaml:"database_url"`
	TablePrefix string `yaml:"table_prefix"`
	BatchSize   int    `yaml:"batch_size"`
	LogDir      string `yaml:"log_dir"`
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		BatchSize:   getEnvInt("BATCH_SIZE", DefaultBatchSize),
		LogDir:      getEnv("LOG_DIR", "logs"),
		MaxLogFiles: getEnvInt("MAX_LOG_FILES", 10),
		Debug:       getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// LoadFile merges a YAML settings file into cfg. Values already set through
// the environment win over the file.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse settings file: %w", err)
	}

	if cfg.DatabaseURL == "" && s.DatabaseURL != "" {
		cfg.DatabaseURL = s.DatabaseURL
	}
	if os.Getenv("TABLE_PREFIX") == "" && s.TablePrefix != "" {
		cfg.TablePrefix = s.TablePrefix
	}
	if os.Getenv("BATCH_SIZE") == "" && s.BatchSize > 0 {
		cfg.BatchSize = s.BatchSize
	}
	if os.Getenv("LOG_DIR") == "" && s.LogDir != "" {
		cfg.LogDir = s.LogDir
	}

	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
