package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	// APIKeyEnv is read first; OPENAI_API_KEY is accepted as a fallback.
	APIKeyEnv = "GEMINI_API_KEY"

	// LedgerDisabled turns the run ledger off when used as LEDGER_DSN.
	LedgerDisabled = "off"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Extract ExtractConfig
	Upload  UploadConfig
	Ledger  LedgerConfig
	Prompts PromptConfig
	Batch   BatchConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr        string
	HTTPAddr        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// LLMConfig holds completion endpoint configuration
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ExtractConfig holds PDF text extraction configuration
type ExtractConfig struct {
	MaxPages     int
	PreviewChars int
}

// UploadConfig holds document staging configuration
type UploadConfig struct {
	ScratchDir string
	MaxBytes   int64
}

// LedgerConfig holds run ledger configuration
type LedgerConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// PromptConfig points at an optional prompt template override file
type PromptConfig struct {
	File string
}

// BatchConfig sizes the worker pool used for directory runs
type BatchConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// LoadConfig loads an optional .env file and then configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			GRPCAddr:        getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr:        getEnv("HTTP_ADDR", ":8081"),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 2*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		LLM: LLMConfig{
			APIKey:  getEnv(APIKeyEnv, getEnv("OPENAI_API_KEY", "")),
			BaseURL: getEnv("LLM_BASE_URL", DefaultBaseURL),
			Model:   getEnv("LLM_MODEL", DefaultModel),
			Timeout: getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Extract: ExtractConfig{
			MaxPages:     getEnvAsInt("EXTRACT_MAX_PAGES", 0),
			PreviewChars: getEnvAsInt("PREVIEW_CHARS", 1000),
		},
		Upload: UploadConfig{
			ScratchDir: getEnv("SCRATCH_DIR", filepath.Join(os.TempDir(), "studynotes")),
			MaxBytes:   getEnvAsInt64("MAX_UPLOAD_BYTES", 32<<20),
		},
		Ledger: LedgerConfig{
			DSN:             getEnv("LEDGER_DSN", ""),
			MaxConns:        getEnvAsInt32("LEDGER_MAX_CONNS", 4),
			MaxConnLifetime: getEnvAsDuration("LEDGER_MAX_CONN_LIFETIME", 30*time.Minute),
		},
		Prompts: PromptConfig{
			File: getEnv("PROMPTS_FILE", ""),
		},
		Batch: BatchConfig{
			Workers:    getEnvAsInt("BATCH_WORKERS", 2),
			QueueSize:  getEnvAsInt("BATCH_QUEUE_SIZE", 64),
			JobTimeout: getEnvAsDuration("BATCH_JOB_TIMEOUT", 5*time.Minute),
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

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
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

// Validate checks the settings the process cannot start without.
// A missing API key is not one of them, see Warnings.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		problems = append(problems, "LLM_BASE_URL is required")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		problems = append(problems, "LLM_MODEL is required")
	}
	if c.LLM.Timeout <= 0 {
		problems = append(problems, "LLM_TIMEOUT must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		problems = append(problems, "MAX_UPLOAD_BYTES must be positive")
	}
	if c.Extract.MaxPages < 0 {
		problems = append(problems, "EXTRACT_MAX_PAGES must not be negative")
	}
	if c.Batch.Workers <= 0 {
		problems = append(problems, "BATCH_WORKERS must be positive")
	}
	if strings.TrimSpace(c.Upload.ScratchDir) == "" {
		problems = append(problems, "SCRATCH_DIR is required")
	}
	if len(problems) > 0 {
		return NewConfigurationError(strings.Join(problems, "; "), nil)
	}
	return nil
}

// Warnings returns non-fatal configuration problems that users should see.
func (c *Config) Warnings() []*AppError {
	var out []*AppError
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		out = append(out, NewConfigurationError(
			fmt.Sprintf("%s environment variable is not set. Please set it to use the AI features.", APIKeyEnv),
			ErrMissingAPIKey,
		))
	}
	return out
}
