package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// AMQP (export jobs)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Receipt recognition
	GeminiAPIKey string
	GeminiModel  string
	ScanTimeout  time.Duration

	// Scan sessions
	ScanSessionTTL  time.Duration
	MaxScanSessions int

	// Export worker
	ExportDir string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/splitinvoice.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "splitinvoice"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "export_bills"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ScanTimeout:  getEnvDuration("SCAN_TIMEOUT", 15*time.Second),

		ScanSessionTTL:  getEnvDuration("SCAN_SESSION_TTL", 30*time.Minute),
		MaxScanSessions: getEnvInt("MAX_SCAN_SESSIONS", 64),

		ExportDir: getEnv("EXPORT_DIR", "./exports"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate scan configuration
	if c.ScanTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid scan timeout %v: must be at least 1 second", c.ScanTimeout))
	} else if c.ScanTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid scan timeout %v: must be at most 5 minutes", c.ScanTimeout))
	}

	if c.ScanSessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid scan session TTL %v: must be at least 1 minute", c.ScanSessionTTL))
	}

	if c.MaxScanSessions < 1 {
		errors = append(errors, fmt.Sprintf("invalid max scan sessions %d: must be at least 1", c.MaxScanSessions))
	} else if c.MaxScanSessions > 10000 {
		errors = append(errors, fmt.Sprintf("invalid max scan sessions %d: must be at most 10000", c.MaxScanSessions))
	}

	if c.ExportDir == "" {
		errors = append(errors, "export directory cannot be empty")
	}

	// Return combined errors
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
