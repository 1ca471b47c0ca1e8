package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Upper bounds for the upload limits. The request body limit is their
// product and must fit in an int.
const (
	MaxFilesLimit      = 100
	MaxFileSizeMBLimit = 512
)

type Config struct {
	// Runtime
	Environment string
	LogLevel    string

	// HTTP Server
	APIHost        string
	APIPort        int
	AllowedOrigins []string

	// Upload limits
	MaxFiles      int
	MaxFileSizeMB int

	// Analysis
	AnalyzeConcurrency int
	RulesFile          string
}

// Load reads the environment, after merging any .env files (missing files
// are ignored), and fills unset keys with defaults.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		APIHost: getEnv("API_HOST", "0.0.0.0"),
		APIPort: getEnvInt("API_PORT", 8000),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}),

		MaxFiles:      getEnvInt("MAX_FILES", 10),
		MaxFileSizeMB: getEnvInt("MAX_FILE_SIZE_MB", 20),

		AnalyzeConcurrency: getEnvInt("ANALYZE_CONCURRENCY", 4),
		RulesFile:          getEnv("RULES_FILE", ""),
	}
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// MaxFileSize is the per-file upload limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.APIPort < 1 || c.APIPort > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.APIPort))
	}

	if c.MaxFiles < 1 || c.MaxFiles > MaxFilesLimit {
		errors = append(errors, fmt.Sprintf("invalid max files %d: must be between 1 and %d", c.MaxFiles, MaxFilesLimit))
	}
	if c.MaxFileSizeMB < 1 || c.MaxFileSizeMB > MaxFileSizeMBLimit {
		errors = append(errors, fmt.Sprintf("invalid max file size %dMB: must be between 1 and %d", c.MaxFileSizeMB, MaxFileSizeMBLimit))
	}

	if c.AnalyzeConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid analyze concurrency %d: must be at least 1", c.AnalyzeConcurrency))
	} else if c.AnalyzeConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid analyze concurrency %d: must be at most 64", c.AnalyzeConcurrency))
	}

	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if strings.EqualFold(c.LogLevel, level) {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("rules file does not exist: %s", c.RulesFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}
